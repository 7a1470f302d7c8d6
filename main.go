package main

import (
	"log"
	"net/http"

	"horizon-server/controllers"
	"horizon-server/middleware"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}

	flow := setupWorkflow(cfg)
	ac := controllers.NewAuthController(flow)
	anc := controllers.NewAccountController(flow)
	lc := controllers.NewLinkController(flow)

	http.Handle("/favicon.ico", http.NotFoundHandler())

	http.HandleFunc("/auth/register", ac.Register)
	http.HandleFunc("/auth/login", ac.Login)
	http.HandleFunc("/auth/logout", ac.Logout)

	http.Handle("/api/me", middleware.EnsureSession(http.HandlerFunc(anc.Me)))
	http.Handle("/api/banks", middleware.EnsureSession(http.HandlerFunc(anc.Banks)))
	http.Handle("/api/dashboard", middleware.EnsureSession(http.HandlerFunc(anc.Dashboard)))
	http.Handle("/api/link/token", middleware.EnsureSession(http.HandlerFunc(lc.CreateToken)))
	http.Handle("/api/link/exchange", middleware.EnsureSession(http.HandlerFunc(lc.Exchange)))

	log.Println("Listening on port " + cfg.Port + ".")
	log.Fatal(http.ListenAndServe(":"+cfg.Port, nil))
}
