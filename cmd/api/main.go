package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"kaupod/internal/adapters/assistant/relay"
	"kaupod/internal/adapters/auth/accounts"
	"kaupod/internal/adapters/geocode/nominatim"
	"kaupod/internal/platform/logger"
	"kaupod/internal/ports/assistant"
	"kaupod/internal/ports/auth"
	"kaupod/internal/ports/geocode"
	"kaupod/internal/router"
)

// @title Kaupod API
// @version 0.1
// @description Backend de pedidos de kits de testeo, consultas y chat asistido.
// @BasePath /
func main() {
	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	appLog := logger.NewFromEnv()

	r := router.NewRouter(router.Options{
		AuthVerifier: buildVerifier(),
		Assistant:    buildAssistant(),
		Geocoder:     buildGeocoder(appLog),
		Logger:       appLog,
	})

	// El stream del chatbot levanta su propio deadline por response;
	// el WriteTimeout cubre el resto de los endpoints.
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Printf("starting server on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// buildVerifier arma el verifier de sesiones si hay env; nil => modo dev
// (X-Debug-User-ID / X-Debug-Role).
func buildVerifier() auth.AuthVerifier {
	baseURL := os.Getenv("ACCOUNTS_BASE_URL")
	apiKey := os.Getenv("ACCOUNTS_API_KEY")
	if baseURL == "" || apiKey == "" {
		return nil
	}
	client := accounts.NewClient(accounts.Config{
		BaseURL: baseURL,
		APIKey:  apiKey,
	})
	return accounts.NewVerifier(client)
}

// buildAssistant arma el cliente del motor de asistente; nil => scripted.
func buildAssistant() assistant.Streamer {
	baseURL := os.Getenv("ASSISTANT_BASE_URL")
	apiKey := os.Getenv("ASSISTANT_API_KEY")
	if baseURL == "" || apiKey == "" {
		return nil
	}
	return relay.NewClient(relay.Config{
		BaseURL: baseURL,
		APIKey:  apiKey,
	})
}

// buildGeocoder arma reverse geocoding best-effort; nil => se omite.
func buildGeocoder(appLog logger.Logger) geocode.Resolver {
	baseURL := os.Getenv("NOMINATIM_BASE_URL")
	if baseURL == "" {
		return nil
	}
	client, err := nominatim.New(nominatim.Config{BaseURL: baseURL})
	if err != nil {
		appLog.Warn("nominatim disabled", map[string]any{"error": err.Error()})
		return nil
	}
	return client
}
