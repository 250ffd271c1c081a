package backend

import (
	"errors"
	"fmt"
)

// Sentinel kinds for backend errors. Typed errors below match them with errors.Is.
var (
	ErrServer  = errors.New("server error")
	ErrNetwork = errors.New("network error")
	ErrFetch   = errors.New("fetch failed")
	ErrDecode  = errors.New("decode response failed")
)

// GenericServerMessage is shown when a failed response carries no message.
const GenericServerMessage = "Erro na resposta do servidor"

// ServerError is a non-2xx response.
type ServerError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *ServerError) Error() string { return e.Message }

// Is lets errors.Is match ErrServer.
func (e *ServerError) Is(target error) bool { return target == ErrServer }

// NetworkError is a transport-level failure such as an unreachable host.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling %s: %v", e.Endpoint, e.Err)
}

// Is lets errors.Is match ErrNetwork.
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

func (e *NetworkError) Unwrap() error { return e.Err }

// FetchError names the statistics endpoint that failed a refresh cycle.
type FetchError struct {
	Endpoint string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("Erro ao buscar %s: %v", e.Endpoint, e.Err)
}

// Is lets errors.Is match ErrFetch.
func (e *FetchError) Is(target error) bool { return target == ErrFetch }

func (e *FetchError) Unwrap() error { return e.Err }
