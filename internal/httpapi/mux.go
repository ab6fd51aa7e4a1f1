package httpapi

import "net/http"

func NewMux(p Pinger) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, p)
	return mux
}
