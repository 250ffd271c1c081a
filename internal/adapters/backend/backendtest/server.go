// Package backendtest provides an in-memory prediction service for tests.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
)

// Canned documents served by default.
const (
	DistributionJSON = `{"Obesity_Type_I": 12, "Normal_Weight": 30, "Overweight_Level_I": 7}`
	GenderJSON       = `{"Male": {"Obesity_Type_I": 8, "Normal_Weight": 14}, "Female": {"Obesity_Type_I": 4, "Normal_Weight": 16, "Overweight_Level_I": 7}}`
	AgeJSON          = `[{"age_range": "14-19", "count": 5, "avg_weight": 58.4}, {"age_range": "20-29", "count": 30, "avg_weight": 72.1}, {"age_range": "30-39", "count": 14, "avg_weight": 81.9}]`
	ActivityJSON     = `[{"activity_level": "Sedentário", "avg_weight": 86.2, "count": 20}, {"activity_level": "Ativo (5+ dias)", "avg_weight": 68.5, "count": 9}]`
	FeaturesJSON     = `{"feature_order": ["Gender", "Age", "Height", "Weight", "FAF", "SMOKE", "FAVC", "family_history_with_overweight"], "required_fields": {` +
		`"Age": {"type": "integer", "min": 14, "max": 100}, ` +
		`"Gender": {"type": "string", "values": ["Male", "Female"]}, ` +
		`"Height": {"type": "float", "min": 1.4, "max": 2.2, "unit": "meters"}, ` +
		`"Weight": {"type": "float", "min": 40, "max": 200, "unit": "kg"}, ` +
		`"FAF": {"type": "integer", "min": 0, "max": 3, "description": "0=Nenhuma, 1=1-2 dias, 2=3-4 dias, 3=5+ dias"}, ` +
		`"SMOKE": {"type": "string", "values": ["yes", "no"]}, ` +
		`"FAVC": {"type": "string", "values": ["yes", "no"]}, ` +
		`"family_history_with_overweight": {"type": "string", "values": ["yes", "no"]}, ` +
		`"CAEC": {"type": "string", "values": ["Never", "Sometimes", "Frequently", "Always"]}, ` +
		`"CALC": {"type": "string", "values": ["Never", "Sometimes", "Frequently", "Always"]}, ` +
		`"MTRANS": {"type": "string", "values": ["Automobile", "Bike", "Motorbike", "Public_Transportation", "Walking"]}}}`
	HistoryJSON      = `[{"_id": "a1", "prediction": "Normal_Weight", "prediction_date": "2024-05-01T10:00:00", "Age": 24, "Gender": "Female", "Height": 1.65, "Weight": 60, "FAF": 2}, {"_id": "a0", "prediction": "Obesity_Type_I", "prediction_date": "2024-04-30T09:00:00", "Age": 41, "Gender": "Male", "Height": 1.8, "Weight": 105, "FAF": 0}]`
	TotalJSON        = `{"total_predictions": 49}`
	PredictJSON      = `{"prediction": "Overweight_Level_I", "prediction_id": "665f1c2e9b"}`
)

func defaults() map[string]string {
	return map[string]string{
		"/predict":                    PredictJSON,
		"/total_predictions":          TotalJSON,
		"/predictions/distribution":   DistributionJSON,
		"/predictions/gender-stats":   GenderJSON,
		"/predictions/age-stats":      AgeJSON,
		"/predictions/activity-stats": ActivityJSON,
		"/features":                   FeaturesJSON,
		"/predictions":                HistoryJSON,
	}
}

// Server is a programmable fake of the prediction service.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	bodies   map[string]string
	statuses map[string]int
	hits     map[string]int
	lastBody []byte
}

// New starts a server answering every endpoint with the canned documents.
func New() *Server {
	s := &Server{
		bodies:   defaults(),
		statuses: map[string]int{},
		hits:     map[string]int{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	body, found := s.bodies[r.URL.Path]
	status := s.statuses[r.URL.Path]
	if r.Method == http.MethodPost {
		var raw json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err == nil {
			s.lastBody = raw
		}
	}
	s.mu.Unlock()

	if !found {
		http.NotFound(w, r)
		return
	}
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// Respond overrides the status and body served for path.
func (s *Server) Respond(path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[path] = status
	s.bodies[path] = body
}

// Fail makes path answer 500 with the given error message. An empty
// message yields a body without an "error" field.
func (s *Server) Fail(path, message string) {
	body := `{}`
	if message != "" {
		b, _ := json.Marshal(map[string]string{"error": message})
		body = string(b)
	}
	s.Respond(path, http.StatusInternalServerError, body)
}

// Restore resets path to its default canned response.
func (s *Server) Restore(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.statuses, path)
	s.bodies[path] = defaults()[path]
}

// Hits reports how many requests path received.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// LastBody returns the most recent POST payload.
func (s *Server) LastBody() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.lastBody...)
}
