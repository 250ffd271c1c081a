package seeder

import (
	"context"
	"crypto/rand"
	"math"
	"math/big"

	"github.com/okian/obesiscope/internal/domain/prediction"
	"github.com/okian/obesiscope/pkg/logger"
)

const randomFloatDivisor = 1000000

// Enumerated answers accepted by the service.
var (
	genders     = []string{"Male", "Female"}
	yesNo       = []string{"yes", "no"}
	frequencies = []string{"Never", "Sometimes", "Frequently", "Always"}
	transports  = []string{"Automobile", "Motorbike", "Bike", "Public_Transportation", "Walking"}
)

// getRandomFloat returns a random float64 in [0, 1) using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func randomInt(lo, hi int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(hi-lo+1)))
	return lo + int(n.Int64())
}

func pick(options []string) string {
	return options[randomInt(0, len(options)-1)]
}

// round to the given number of decimals.
func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// Generate creates n requests that pass prediction.Validate.
func Generate(ctx context.Context, n int) []prediction.Request {
	logger.Get().Info(ctx, "generating prediction requests", logger.Int("count", n))

	out := make([]prediction.Request, 0, n)
	for range n {
		out = append(out, randomRequest())
	}
	return out
}

func randomRequest() prediction.Request {
	height := round(prediction.MinHeight+getRandomFloat()*(prediction.MaxHeight-prediction.MinHeight), 2)
	weight := round(prediction.MinWeight+getRandomFloat()*(prediction.MaxWeight-prediction.MinWeight), 1)

	return prediction.Request{
		Age:           randomInt(prediction.MinAge, prediction.MaxAge),
		Gender:        pick(genders),
		Height:        math.Min(height, prediction.MaxHeight),
		Weight:        math.Min(weight, prediction.MaxWeight),
		FAF:           randomInt(prediction.MinFAF, prediction.MaxFAF),
		Smoke:         pick(yesNo),
		FAVC:          pick(yesNo),
		FamilyHistory: pick(yesNo),
		CAEC:          pick(frequencies),
		CALC:          pick(frequencies),
		MTRANS:        pick(transports),
	}
}
