package contacts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/famhub/famhub/internal/rest"
)

type PhoneDTO struct {
	Type      string `json:"type"`
	Number    string `json:"number"`
	IsPrimary bool   `json:"isPrimary,omitempty"`
}

type EmailDTO struct {
	Type      string `json:"type"`
	Address   string `json:"address"`
	IsPrimary bool   `json:"isPrimary,omitempty"`
}

type ContactDTO struct {
	Uid         string     `json:"uid"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
	Nickname    string     `json:"nickname,omitempty"`
	Birthday    string     `json:"birthday,omitempty"`
	Company     string     `json:"company,omitempty"`
	JobTitle    string     `json:"jobTitle,omitempty"`
	Address     string     `json:"address,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	IsFavorite  bool       `json:"isFavorite,omitempty"`
	IsArchived  bool       `json:"isArchived,omitempty"`
	Phones      []PhoneDTO `json:"phones,omitempty"`
	Emails      []EmailDTO `json:"emails,omitempty"`
}

type UpcomingBirthdayDTO struct {
	Contact  ContactDTO `json:"contact"`
	Date     string     `json:"date"`
	TurnsAge int        `json:"turnsAge,omitempty"`
}

type Handler struct {
	contactsService Service
}

func NewHandler(contactsService Service) *Handler {
	return &Handler{contactsService: contactsService}
}

func (h *Handler) GetContacts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if term := r.URL.Query().Get("q"); term != "" {
		contacts, err := h.contactsService.SearchContacts(r.Context(), term)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeContacts(w, contacts)
		return
	}

	includeArchived := r.URL.Query().Get("includeArchived") == "true"
	contacts, err := h.contactsService.GetContacts(r.Context(), includeArchived)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeContacts(w, contacts)
}

func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	contact, err := h.contactsService.GetContact(r.Context(), mux.Vars(r)["contactUid"])
	if err != nil {
		if errors.Is(err, ErrContactNotFound) {
			http.Error(w, "contact not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(contactToDTO(contact)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// CreateContact godoc
// @Summary Add a contact to the family address book
// @Tags Contacts
// @Accept json
// @Produce json
// @Param contact body ContactDTO true "Contact"
// @Success 201 {object} ContactDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/contacts [post]
func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Creating contact")

	var dto ContactDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "Invalid request body format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}

	contact, err := dtoToContact(dto)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid birthday format",
			Details: "'birthday' must be in YYYY-MM-DD format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}

	created, err := h.contactsService.CreateContact(r.Context(), contact)
	if err != nil {
		writeContactError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(contactToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto ContactDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	contact, err := dtoToContact(dto)
	if err != nil {
		http.Error(w, "invalid birthday format", http.StatusBadRequest)
		return
	}
	contact.Uid = mux.Vars(r)["contactUid"]

	updated, err := h.contactsService.UpdateContact(r.Context(), contact)
	if err != nil {
		if errors.Is(err, ErrContactNotFound) {
			http.Error(w, "contact not found", http.StatusNotFound)
			return
		}
		writeContactError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(contactToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := h.contactsService.DeleteContact(r.Context(), mux.Vars(r)["contactUid"]); err != nil {
		if errors.Is(err, ErrContactNotFound) {
			http.Error(w, "contact not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleFavorite godoc
// @Summary Flip a contact's favorite flag
// @Tags Contacts
// @Produce json
// @Param contactUid path string true "Contact uid"
// @Success 200 {object} ContactDTO
// @Failure 404 {string} string "Contact not found"
// @Router /api/contacts/{contactUid}/favorite [post]
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	contact, err := h.contactsService.ToggleFavorite(r.Context(), mux.Vars(r)["contactUid"])
	if err != nil {
		if errors.Is(err, ErrContactNotFound) {
			http.Error(w, "contact not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(contactToDTO(contact)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ToggleArchive flips the archived flag, hiding or restoring the contact.
func (h *Handler) ToggleArchive(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	contact, err := h.contactsService.ToggleArchive(r.Context(), mux.Vars(r)["contactUid"])
	if err != nil {
		if errors.Is(err, ErrContactNotFound) {
			http.Error(w, "contact not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(contactToDTO(contact)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpcomingBirthdays(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid days", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	birthdays, err := h.contactsService.GetUpcomingBirthdays(r.Context(), days)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]UpcomingBirthdayDTO, 0, len(birthdays))
	for _, birthday := range birthdays {
		dtos = append(dtos, UpcomingBirthdayDTO{
			Contact:  contactToDTO(birthday.Contact),
			Date:     birthday.Date.Format("2006-01-02"),
			TurnsAge: birthday.TurnsAge,
		})
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeContacts(w http.ResponseWriter, contacts []Contact) {
	dtos := make([]ContactDTO, 0, len(contacts))
	for _, contact := range contacts {
		dtos = append(dtos, contactToDTO(contact))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeContactError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyFirstName):
		http.Error(w, "contact first name is required", http.StatusBadRequest)
	case errors.Is(err, ErrInvalidPhone), errors.Is(err, ErrInvalidEmail):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func contactToDTO(contact Contact) ContactDTO {
	dto := ContactDTO{
		Uid:         contact.Uid,
		FirstName:   contact.FirstName,
		LastName:    contact.LastName,
		DisplayName: contact.DisplayName,
		Nickname:    contact.Nickname,
		Company:     contact.Company,
		JobTitle:    contact.JobTitle,
		Address:     contact.Address,
		Notes:       contact.Notes,
		IsFavorite:  contact.IsFavorite,
		IsArchived:  contact.IsArchived,
	}
	if !contact.Birthday.IsZero() {
		dto.Birthday = contact.Birthday.Format("2006-01-02")
	}
	for _, phone := range contact.Phones {
		dto.Phones = append(dto.Phones, PhoneDTO{
			Type: string(phone.Type), Number: phone.Number, IsPrimary: phone.IsPrimary,
		})
	}
	for _, email := range contact.Emails {
		dto.Emails = append(dto.Emails, EmailDTO{
			Type: string(email.Type), Address: email.Address, IsPrimary: email.IsPrimary,
		})
	}
	return dto
}

func dtoToContact(dto ContactDTO) (Contact, error) {
	contact := Contact{
		Uid:         dto.Uid,
		FirstName:   dto.FirstName,
		LastName:    dto.LastName,
		DisplayName: dto.DisplayName,
		Nickname:    dto.Nickname,
		Company:     dto.Company,
		JobTitle:    dto.JobTitle,
		Address:     dto.Address,
		Notes:       dto.Notes,
		IsFavorite:  dto.IsFavorite,
		IsArchived:  dto.IsArchived,
	}
	if dto.Birthday != "" {
		birthday, err := time.Parse("2006-01-02", dto.Birthday)
		if err != nil {
			return Contact{}, err
		}
		contact.Birthday = birthday
	}
	for _, phone := range dto.Phones {
		contact.Phones = append(contact.Phones, Phone{
			Type: PhoneType(phone.Type), Number: phone.Number, IsPrimary: phone.IsPrimary,
		})
	}
	for _, email := range dto.Emails {
		contact.Emails = append(contact.Emails, Email{
			Type: EmailType(email.Type), Address: email.Address, IsPrimary: email.IsPrimary,
		})
	}
	return contact, nil
}
