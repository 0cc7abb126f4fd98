package handlers

import (
	"math"
	"net/http"
	"strconv"
)

// CalcHandler - арифметика над двумя числами из query-параметров.
// Формат ответа повторяет исходный API:
// {"status":"success","statusCode":200,"message":"...","data":{"result":N}}
type CalcHandler struct{}

func NewCalcHandler() *CalcHandler {
	return &CalcHandler{}
}

type calcResponse struct {
	Status     string         `json:"status"`
	StatusCode int            `json:"statusCode"`
	Message    string         `json:"message"`
	Data       map[string]any `json:"data,omitempty"`
}

func calcSuccess(w http.ResponseWriter, message string, result float64) {
	// NaN и Inf не представимы в JSON: исходный API отдает "result": null
	var value any = result
	if math.IsNaN(result) || math.IsInf(result, 0) {
		value = nil
	}
	respondJSON(w, http.StatusOK, calcResponse{
		Status:     "success",
		StatusCode: http.StatusOK,
		Message:    message,
		Data:       map[string]any{"result": value},
	})
}

func calcError(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusBadRequest, calcResponse{
		Status:     "error",
		StatusCode: http.StatusBadRequest,
		Message:    message,
	})
}

// parseOperands - валидация входа: оба параметра должны быть числами
func parseOperands(r *http.Request) (float64, float64, bool) {
	a, errA := strconv.ParseFloat(r.URL.Query().Get("a"), 64)
	b, errB := strconv.ParseFloat(r.URL.Query().Get("b"), 64)
	if errA != nil || errB != nil {
		return 0, 0, false
	}
	return a, b, true
}

func (h *CalcHandler) Add(w http.ResponseWriter, r *http.Request) {
	a, b, ok := parseOperands(r)
	if !ok {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid input. Please provide two numbers."})
		return
	}
	calcSuccess(w, "Addition successful", a+b)
}

func (h *CalcHandler) Subtract(w http.ResponseWriter, r *http.Request) {
	a, b, ok := parseOperands(r)
	if !ok {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid input. Please provide two numbers."})
		return
	}
	calcSuccess(w, "Subtraction successful", a-b)
}

func (h *CalcHandler) Multiply(w http.ResponseWriter, r *http.Request) {
	a, b, ok := parseOperands(r)
	if !ok {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid input. Please provide two numbers."})
		return
	}
	calcSuccess(w, "Multiplication successful", a*b)
}

func (h *CalcHandler) Divide(w http.ResponseWriter, r *http.Request) {
	a, b, ok := parseOperands(r)
	if !ok {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid input. Please provide two numbers."})
		return
	}
	if b == 0 {
		calcError(w, "Division by zero is not allowed.")
		return
	}
	calcSuccess(w, "Division successful", a/b)
}

func (h *CalcHandler) Exponent(w http.ResponseWriter, r *http.Request) {
	a, b, ok := parseOperands(r)
	if !ok {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid input. Please provide two numbers."})
		return
	}
	calcSuccess(w, "Exponentiation successful", math.Pow(a, b))
}

func (h *CalcHandler) Sqrt(w http.ResponseWriter, r *http.Request) {
	a, err := strconv.ParseFloat(r.URL.Query().Get("a"), 64)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid input. Please provide a number."})
		return
	}
	if a < 0 {
		calcError(w, "Square root of negative numbers is not allowed.")
		return
	}
	calcSuccess(w, "Square root successful", math.Sqrt(a))
}

func (h *CalcHandler) Modulus(w http.ResponseWriter, r *http.Request) {
	a, b, ok := parseOperands(r)
	if !ok {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid input. Please provide two numbers."})
		return
	}
	if b == 0 {
		calcError(w, "Division by zero is not allowed.")
		return
	}
	calcSuccess(w, "Modulus successful", math.Mod(a, b))
}
