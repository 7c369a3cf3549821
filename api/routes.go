package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

func RegisterRoutes() http.Handler {
	router := mux.NewRouter()

	// Scene endpoints
	router.HandleFunc("/scenes", CreateScene).Methods("POST")
	router.HandleFunc("/scenes/{scene_id}", GetScene).Methods("GET")
	router.HandleFunc("/scenes/{scene_id}/stats", SceneStats).Methods("GET")

	// Object endpoints
	router.HandleFunc("/scenes/{scene_id}/objects", CreateObject).Methods("POST")
	router.HandleFunc("/scenes/{scene_id}/objects", ClearScene).Methods("DELETE")
	router.HandleFunc("/scenes/{scene_id}/generate", GenerateObjects).Methods("POST")

	// Viewport query endpoints
	router.HandleFunc("/scenes/{scene_id}/viewport", QueryViewport).Methods("GET")
	router.HandleFunc("/scenes/{scene_id}/viewport/lod", QueryViewportLOD).Methods("GET")

	// Index technique comparison
	router.HandleFunc("/scenes/{scene_id}/benchmark", BenchmarkScene).Methods("GET")

	// Add CORS support
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	return cors(router)
}
