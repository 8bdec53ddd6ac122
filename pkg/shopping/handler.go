package shopping

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/famhub/famhub/internal/rest"
)

type ListDTO struct {
	Uid          string `json:"uid"`
	Name         string `json:"name"`
	IsDefault    bool   `json:"isDefault"`
	ItemCount    int    `json:"itemCount"`
	CheckedCount int    `json:"checkedCount"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

type ItemDTO struct {
	Uid        string  `json:"uid"`
	ListUid    string  `json:"listUid,omitempty"`
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity,omitempty"`
	Unit       string  `json:"unit,omitempty"`
	Category   string  `json:"category,omitempty"`
	Checked    bool    `json:"checked"`
	CheckedAt  string  `json:"checkedAt,omitempty"`
	AddedByUid string  `json:"addedByUid,omitempty"`
}

type AddItemDTO struct {
	ItemDTO
	ForceAdd bool `json:"forceAdd,omitempty"`
}

type AddItemResponseDTO struct {
	Item              *ItemDTO `json:"item,omitempty"`
	Merged            bool     `json:"merged,omitempty"`
	PreviousQuantity  float64  `json:"previousQuantity,omitempty"`
	NeedsConfirmation bool     `json:"needsConfirmation,omitempty"`
	Duplicate         *ItemDTO `json:"duplicate,omitempty"`
}

type CompleteShopDTO struct {
	ItemsCompleted int `json:"itemsCompleted"`
}

type Handler struct {
	shoppingService Service
}

func NewHandler(shoppingService Service) *Handler {
	return &Handler{shoppingService: shoppingService}
}

func (h *Handler) GetLists(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	lists, err := h.shoppingService.GetLists(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]ListDTO, 0, len(lists))
	for _, list := range lists {
		dtos = append(dtos, listToDTO(list))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) CreateList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto ListDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	list, err := h.shoppingService.CreateList(r.Context(), dto.Name, dto.IsDefault)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(listToDTO(ListSummary{List: list})); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) DeleteList(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["listUid"]
	if err := h.shoppingService.DeleteList(r.Context(), uid); err != nil {
		if errors.Is(err, ErrListNotFound) {
			http.Error(w, "list not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetItems(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	items, err := h.shoppingService.GetItems(r.Context(), mux.Vars(r)["listUid"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]ItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, itemToDTO(item))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// AddItem godoc
// @Summary Add an item to a shopping list
// @Description Duplicate open items merge their quantities. An item checked
// @Description off within the last day is returned for confirmation instead,
// @Description unless forceAdd is set.
// @Tags Shopping
// @Accept json
// @Produce json
// @Param item body AddItemDTO true "Item"
// @Success 200 {object} AddItemResponseDTO "Merged or needs confirmation"
// @Success 201 {object} AddItemResponseDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/shopping/list/{listUid}/item [post]
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Adding shopping item")

	var dto AddItemDTO
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

	result, err := h.shoppingService.AddItem(r.Context(), mux.Vars(r)["listUid"], dtoToItem(dto.ItemDTO), dto.ForceAdd)
	if err != nil {
		if errors.Is(err, ErrEmptyItemName) {
			http.Error(w, "item name is required", http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	response := AddItemResponseDTO{
		Merged:           result.Merged,
		PreviousQuantity: result.PreviousQuantity,
	}
	status := http.StatusCreated
	if result.NeedsConfirmation {
		duplicate := itemToDTO(result.Item)
		response.NeedsConfirmation = true
		response.Duplicate = &duplicate
		status = http.StatusOK
	} else {
		item := itemToDTO(result.Item)
		response.Item = &item
		if result.Merged {
			status = http.StatusOK
		}
	}

	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto ItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	item := dtoToItem(dto)
	item.Uid = mux.Vars(r)["itemUid"]

	updated, err := h.shoppingService.UpdateItem(r.Context(), item)
	if err != nil {
		writeItemError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(itemToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	item, err := h.shoppingService.ToggleItem(r.Context(), mux.Vars(r)["itemUid"])
	if err != nil {
		writeItemError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(itemToDTO(item)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.shoppingService.DeleteItem(r.Context(), mux.Vars(r)["itemUid"]); err != nil {
		writeItemError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CompleteShop(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	completed, err := h.shoppingService.CompleteShop(r.Context(), mux.Vars(r)["listUid"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(CompleteShopDTO{ItemsCompleted: completed}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(Categories()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetItemNames(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	names, err := h.shoppingService.GetItemNames(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(names); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeItemError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrItemNotFound):
		http.Error(w, "item not found", http.StatusNotFound)
	case errors.Is(err, ErrEmptyItemName):
		http.Error(w, "item name is required", http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func listToDTO(list ListSummary) ListDTO {
	dto := ListDTO{
		Uid:          list.Uid,
		Name:         list.Name,
		IsDefault:    list.IsDefault,
		ItemCount:    list.ItemCount,
		CheckedCount: list.CheckedCount,
	}
	if !list.UpdatedAt.IsZero() {
		dto.UpdatedAt = list.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

func itemToDTO(item Item) ItemDTO {
	dto := ItemDTO{
		Uid:        item.Uid,
		ListUid:    item.ListUid,
		Name:       item.Name,
		Quantity:   item.Quantity,
		Unit:       item.Unit,
		Category:   item.Category,
		Checked:    item.Checked,
		AddedByUid: item.AddedByUid,
	}
	if !item.CheckedAt.IsZero() {
		dto.CheckedAt = item.CheckedAt.Format(time.RFC3339)
	}
	return dto
}

func dtoToItem(dto ItemDTO) Item {
	return Item{
		Uid:      dto.Uid,
		ListUid:  dto.ListUid,
		Name:     dto.Name,
		Quantity: dto.Quantity,
		Unit:     dto.Unit,
		Category: dto.Category,
	}
}
