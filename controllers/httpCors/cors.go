package httpCors

import (
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

// CorsSettings allows the browser client to call the gate service with
// credentials. "*" echoes back whatever origin asked.
func CorsSettings(origins []string) *cors.Cors {
	opts := cors.Options{
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
	}
	// rs/cors logs whenever a Logger is set, whatever Debug says.
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		opts.Debug = true
		opts.Logger = logrus.StandardLogger()
	}
	for _, o := range origins {
		if o == "*" {
			opts.AllowOriginFunc = func(string) bool { return true }
			break
		}
	}
	return cors.New(opts)
}
