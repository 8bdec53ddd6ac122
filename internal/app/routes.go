package app

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/famhub/famhub/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Family
	r.HandleFunc("/api/family", deps.FamilyHandler.CreateFamily).Methods("POST")
	r.HandleFunc("/api/family/current", deps.FamilyHandler.CurrentFamily).Methods("GET")
	r.HandleFunc("/api/family/current", deps.FamilyHandler.UpdateFamily).Methods("PUT")
	r.HandleFunc("/api/family/slug-availability", deps.FamilyHandler.IsSlugAvailable).Queries("slug", "{slug}").Methods("GET")

	// Family members
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user", deps.UserHandler.GetAllUsers).Methods("GET")
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/{userId}", deps.UserHandler.UpdateUser).Methods("PUT")
	r.HandleFunc("/api/user/{userId}", deps.UserHandler.DeleteUser).Methods("DELETE")

	// Calendar
	r.HandleFunc("/api/calendar/event", deps.CalendarHandler.GetEvents).Queries("from", "{from}", "to", "{to}").Methods("GET")
	r.HandleFunc("/api/calendar/event", deps.CalendarHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/calendar/event/{eventUid}", deps.CalendarHandler.GetEvent).Methods("GET")
	r.HandleFunc("/api/calendar/event/{eventUid}", deps.CalendarHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/calendar/event/{eventUid}", deps.CalendarHandler.DeleteEvent).Methods("DELETE")
	r.HandleFunc("/api/calendar/event/{eventUid}/attendee/{attendeeUid}", deps.CalendarHandler.GetAttendee).Methods("GET")
	r.HandleFunc("/api/calendar/event/{eventUid}/attendee/{attendeeUid}/rsvp", deps.CalendarHandler.UpdateAttendeeRSVP).Methods("PATCH")
	r.HandleFunc("/api/calendar/upcoming", deps.CalendarHandler.UpcomingEvents).Methods("GET")
	r.HandleFunc("/api/calendar/search", deps.CalendarHandler.SearchEvents).Queries("q", "{q}").Methods("GET")
	r.HandleFunc("/api/calendar/export", deps.CalendarHandler.ExportICS).Queries("from", "{from}", "to", "{to}").Methods("GET")
	r.HandleFunc("/api/calendar/quick", deps.CalendarHandler.QuickAdd).Methods("POST")

	// Shopping
	r.HandleFunc("/api/shopping/list", deps.ShoppingHandler.GetLists).Methods("GET")
	r.HandleFunc("/api/shopping/list", deps.ShoppingHandler.CreateList).Methods("POST")
	r.HandleFunc("/api/shopping/list/{listUid}", deps.ShoppingHandler.DeleteList).Methods("DELETE")
	r.HandleFunc("/api/shopping/list/{listUid}/item", deps.ShoppingHandler.GetItems).Methods("GET")
	r.HandleFunc("/api/shopping/list/{listUid}/item", deps.ShoppingHandler.AddItem).Methods("POST")
	r.HandleFunc("/api/shopping/list/{listUid}/complete", deps.ShoppingHandler.CompleteShop).Methods("POST")
	r.HandleFunc("/api/shopping/item/{itemUid}", deps.ShoppingHandler.UpdateItem).Methods("PUT")
	r.HandleFunc("/api/shopping/item/{itemUid}/toggle", deps.ShoppingHandler.ToggleItem).Methods("PATCH")
	r.HandleFunc("/api/shopping/item/{itemUid}", deps.ShoppingHandler.DeleteItem).Methods("DELETE")
	r.HandleFunc("/api/shopping/categories", deps.ShoppingHandler.GetCategories).Methods("GET")
	r.HandleFunc("/api/shopping/item-names", deps.ShoppingHandler.GetItemNames).Methods("GET")

	// Contacts
	r.HandleFunc("/api/contacts", deps.ContactsHandler.GetContacts).Methods("GET")
	r.HandleFunc("/api/contacts", deps.ContactsHandler.CreateContact).Methods("POST")
	r.HandleFunc("/api/contacts/birthdays", deps.ContactsHandler.UpcomingBirthdays).Methods("GET")
	r.HandleFunc("/api/contacts/{contactUid}", deps.ContactsHandler.GetContact).Methods("GET")
	r.HandleFunc("/api/contacts/{contactUid}/favorite", deps.ContactsHandler.ToggleFavorite).Methods("POST")
	r.HandleFunc("/api/contacts/{contactUid}/archive", deps.ContactsHandler.ToggleArchive).Methods("POST")
	r.HandleFunc("/api/contacts/{contactUid}", deps.ContactsHandler.UpdateContact).Methods("PUT")
	r.HandleFunc("/api/contacts/{contactUid}", deps.ContactsHandler.DeleteContact).Methods("DELETE")

	// Health
	r.HandleFunc("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods("GET")

	if cfg.Metrics.Enabled {
		r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}
}
