package app

import (
	"database/sql"

	"github.com/famhub/famhub/internal/config"
	"github.com/famhub/famhub/internal/utils"
	"github.com/famhub/famhub/pkg/calendar"
	"github.com/famhub/famhub/pkg/contacts"
	"github.com/famhub/famhub/pkg/family"
	"github.com/famhub/famhub/pkg/shopping"
	"github.com/famhub/famhub/pkg/user"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	FamilyService family.Service
	FamilyHandler *family.Handler

	UserService user.Service
	UserHandler *user.Handler

	CalendarRepository *calendar.RepositoryImpl
	CalendarService    calendar.Service
	CalendarHandler    *calendar.Handler

	ShoppingRepository *shopping.RepositoryImpl
	ShoppingService    shopping.Service
	ShoppingHandler    *shopping.Handler

	ContactsRepository *contacts.RepositoryImpl
	ContactsService    contacts.Service
	ContactsHandler    *contacts.Handler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}

	deps.FamilyService = family.NewFamilyService(family.NewFamilyRepo(db), cfg.Calendar.DefaultTimezone)
	deps.FamilyHandler = family.NewHandler(deps.FamilyService)

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.CalendarRepository = calendar.NewRepository(db)
	deps.CalendarService = calendar.NewCalendarService(
		deps.CalendarRepository, deps.FamilyService, deps.Clock, cfg.Calendar.MaxInstances)
	deps.CalendarHandler = calendar.NewHandler(deps.CalendarService)

	deps.ShoppingRepository = shopping.NewRepository(db)
	deps.ShoppingService = shopping.NewShoppingService(deps.ShoppingRepository, deps.Clock)
	deps.ShoppingHandler = shopping.NewHandler(deps.ShoppingService)

	deps.ContactsRepository = contacts.NewRepository(db)
	deps.ContactsService = contacts.NewContactsService(
		deps.ContactsRepository, deps.FamilyService, deps.Clock)
	deps.ContactsHandler = contacts.NewHandler(deps.ContactsService)

	return deps
}
