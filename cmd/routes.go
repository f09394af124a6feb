package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) JWTMiddlewareWithRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.JWTMiddleware(next, requiredRole)
	}
}

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole("user"))

	mux := pat.New()

	// Auth
	mux.Post("/auth/sign_up", standardMiddleware.ThenFunc(app.userHandler.SignUp))
	mux.Post("/auth/sign_in", standardMiddleware.ThenFunc(app.userHandler.SignIn))
	mux.Post("/auth/refresh", standardMiddleware.ThenFunc(app.userHandler.RefreshTokens))
	mux.Post("/auth/logout", authMiddleware.ThenFunc(app.userHandler.LogOut))

	// Profile
	mux.Get("/profile", authMiddleware.ThenFunc(app.userHandler.GetMe))
	mux.Put("/profile", authMiddleware.ThenFunc(app.userHandler.UpdateProfile))
	mux.Put("/profile/password", authMiddleware.ThenFunc(app.userHandler.UpdatePassword))
	mux.Post("/profile/avatar", authMiddleware.ThenFunc(app.userHandler.UploadAvatar))
	mux.Get("/users/:id", authMiddleware.ThenFunc(app.userHandler.GetUserProfile))
	mux.Get("/users/:id/reviews", authMiddleware.ThenFunc(app.reviewHandler.GetReviewsByUserID))

	// Requests (web board)
	mux.Get("/requests", standardMiddleware.ThenFunc(app.requestHandler.ListRequests))
	mux.Post("/requests", authMiddleware.ThenFunc(app.requestHandler.CreateRequest))
	mux.Get("/requests/my", authMiddleware.ThenFunc(app.requestHandler.GetMyRequests))
	mux.Get("/requests/:id", standardMiddleware.ThenFunc(app.requestHandler.GetRequestByID))
	mux.Post("/requests/:id/close", authMiddleware.ThenFunc(app.requestHandler.CloseRequest))
	mux.Get("/requests/:id/contact", authMiddleware.ThenFunc(app.requestHandler.GetRequestContact))
	mux.Post("/requests/:id/offers", authMiddleware.ThenFunc(app.requestHandler.CreateOffer))
	mux.Get("/requests/:id/offers", authMiddleware.ThenFunc(app.requestHandler.GetOffers))
	mux.Get("/offers/my", authMiddleware.ThenFunc(app.requestHandler.GetMyOffers))

	// Tasks (mobile map surface)
	mux.Get("/tasks", standardMiddleware.ThenFunc(app.taskHandler.ListOpenTasks))
	mux.Get("/tasks/nearby", standardMiddleware.ThenFunc(app.taskHandler.NearbyTasks))
	mux.Post("/tasks", authMiddleware.ThenFunc(app.taskHandler.CreateTask))
	mux.Get("/tasks/my", authMiddleware.ThenFunc(app.taskHandler.GetMyTasks))
	mux.Get("/tasks/executing", authMiddleware.ThenFunc(app.taskHandler.GetMyExecutions))
	mux.Post("/tasks/photos", authMiddleware.ThenFunc(app.taskHandler.UploadPhotos))
	mux.Get("/tasks/:id", standardMiddleware.ThenFunc(app.taskHandler.GetTaskByID))
	mux.Put("/tasks/:id", authMiddleware.ThenFunc(app.taskHandler.UpdateTask))
	mux.Del("/tasks/:id", authMiddleware.ThenFunc(app.taskHandler.DeleteTask))
	mux.Post("/tasks/:id/complete", authMiddleware.ThenFunc(app.taskHandler.CompleteTask))
	mux.Post("/tasks/:id/cancel", authMiddleware.ThenFunc(app.taskHandler.CancelTask))

	// Task responses
	mux.Post("/tasks/:id/responses", authMiddleware.ThenFunc(app.taskResponseHandler.CreateResponse))
	mux.Get("/tasks/:id/responses", authMiddleware.ThenFunc(app.taskResponseHandler.GetResponses))
	mux.Post("/tasks/:id/responses/:user_id/accept", authMiddleware.ThenFunc(app.taskResponseHandler.AcceptResponse))
	mux.Post("/tasks/:id/responses/:user_id/reject", authMiddleware.ThenFunc(app.taskResponseHandler.RejectResponse))

	// Chats
	mux.Post("/chats", authMiddleware.ThenFunc(app.chatHandler.StartChat))
	mux.Get("/chats", authMiddleware.ThenFunc(app.chatHandler.GetChats))
	mux.Get("/chats/unread", authMiddleware.ThenFunc(app.chatHandler.CountUnread))
	mux.Get("/chats/:id", authMiddleware.ThenFunc(app.chatHandler.GetChat))
	mux.Del("/chats/:id", authMiddleware.ThenFunc(app.chatHandler.DeleteChat))
	mux.Post("/chats/:id/messages", authMiddleware.ThenFunc(app.chatHandler.SendMessage))
	mux.Post("/chats/:id/read", authMiddleware.ThenFunc(app.chatHandler.MarkRead))
	mux.Get("/ws/chat", authMiddleware.ThenFunc(app.chatHub.ServeWS(app)))

	// Reviews
	mux.Post("/reviews", authMiddleware.ThenFunc(app.reviewHandler.CreateReview))

	// Geo
	mux.Get("/geo/geocode", authMiddleware.ThenFunc(app.geoHandler.Geocode))
	mux.Get("/geo/reverse", authMiddleware.ThenFunc(app.geoHandler.ReverseGeocode))

	// Push tokens
	mux.Post("/push/token", authMiddleware.ThenFunc(app.pushTokenHandler.RegisterToken))
	mux.Del("/push/token", authMiddleware.ThenFunc(app.pushTokenHandler.DeleteToken))

	return mux
}
