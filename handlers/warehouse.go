package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"warehouse-backend/algorithms"
	"warehouse-backend/models"
	"warehouse-backend/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func errUnknownMessage(t string) error {
	return fmt.Errorf("unknown message type %q", t)
}

// Handler wires the store, fleet and layout source to HTTP and WebSocket.
type Handler struct {
	Store   *services.WarehouseStore
	Fleet   *services.Fleet
	Source  services.LayoutSource
	Manager *ClientManager
}

// NewHandler subscribes the client manager to store changes.
func NewHandler(store *services.WarehouseStore, fleet *services.Fleet, source services.LayoutSource, manager *ClientManager) *Handler {
	h := &Handler{
		Store:   store,
		Fleet:   fleet,
		Source:  source,
		Manager: manager,
	}

	store.Subscribe(func(snap models.StoreSnapshot) {
		manager.BroadcastMessage(models.WebSocketMessage{
			Type: models.MessageTypeFilterUpdate,
			Data: models.FilterState{
				ActiveFilters: snap.ActiveFilters,
				HoveredItem:   snap.HoveredItem,
			},
			Timestamp: time.Now().UnixMilli(),
		})
	})
	return h
}

// Reload loads the layout again. On success the fleet is rebuilt from the new
// routes; on failure the store keeps its previous data and error message.
func (h *Handler) Reload(ctx context.Context) error {
	err := h.Store.LoadData(ctx, h.Source)
	now := time.Now().UnixMilli()

	if err != nil {
		h.Manager.BroadcastMessage(models.WebSocketMessage{
			Type:      models.MessageTypeDataError,
			Data:      fiber.Map{"error": err.Error()},
			Timestamp: now,
		})
		return err
	}

	h.Fleet.Sync(h.Store.Routes())
	h.Manager.BroadcastMessage(models.WebSocketMessage{
		Type:      models.MessageTypeDataLoaded,
		Data:      h.Store.Snapshot(),
		Timestamp: now,
	})
	return nil
}

// AppConfig is the fiber configuration the routes expect. Route names may
// contain spaces, so path parameters are unescaped.
func AppConfig() fiber.Config {
	return fiber.Config{
		UnescapePath:          true,
		DisableStartupMessage: true,
	}
}

// Register mounts every route under app.
func (h *Handler) Register(app fiber.Router) {
	api := app.Group("/api")

	api.Get("/health", h.HandleHealth)

	api.Get("/warehouse", h.HandleGetWarehouse)
	api.Post("/warehouse/reload", h.HandleReload)
	api.Get("/racks", h.HandleGetRacks)
	api.Get("/zones", h.HandleGetZones)
	api.Get("/routes", h.HandleGetRoutes)
	api.Get("/scene", h.HandleGetScene)
	api.Get("/items", h.HandleGetItems)
	api.Get("/conditions", h.HandleGetConditions)
	api.Get("/slot", h.HandleGetSlot)

	filters := api.Group("/filters")
	filters.Get("/", h.HandleGetFilters)
	filters.Put("/", h.HandleSetFilters)
	filters.Delete("/", h.HandleClearFilters)
	filters.Post("/toggle", h.HandleToggleFilter)
	filters.Post("/all", h.HandleSelectAllFilters)

	api.Put("/hover", h.HandleSetHover)

	api.Get("/vehicles", h.HandleGetVehicles)
	api.Get("/vehicles/:name", h.HandleGetVehicle)
	api.Delete("/vehicles/:name", h.HandleRemoveVehicle)

	api.Get("/fleet/stats", h.HandleGetVehicleStats)
	api.Get("/system", h.HandleGetSystem)
}

// SystemInfo - 현재 서버 상태 요약
func (h *Handler) SystemInfo() models.SystemInfo {
	return models.SystemInfo{
		ConnectedClients: h.Manager.GetClientCount(),
		Vehicles:         h.Fleet.Count(),
		DataSource:       h.Source.Name(),
		ServerTime:       time.Now().Format(time.RFC3339),
	}
}

// RunSystemInfo broadcasts SystemInfo every interval until ctx is cancelled.
func (h *Handler) RunSystemInfo(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			h.Manager.BroadcastMessage(models.WebSocketMessage{
				Type:      models.MessageTypeSystemInfo,
				Data:      h.SystemInfo(),
				Timestamp: time.Now().UnixMilli(),
			})
		}
	}
}

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "OK",
		"clients":     h.Manager.GetClientCount(),
		"vehicles":    h.Fleet.Count(),
		"data_source": h.Source.Name(),
		"loaded":      h.Store.Data() != nil,
		"time":        time.Now().Format(time.RFC3339),
	})
}

// HandleGetWarehouse - 스토어 전체 상태
func (h *Handler) HandleGetWarehouse(c *fiber.Ctx) error {
	return c.JSON(h.Store.Snapshot())
}

// HandleReload - 데이터 다시 불러오기 (사용자 재시도)
func (h *Handler) HandleReload(c *fiber.Ctx) error {
	if err := h.Reload(c.UserContext()); err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"racks":   len(h.Store.Racks()),
		"zones":   len(h.Store.Zones()),
		"routes":  len(h.Store.Routes()),
	})
}

func (h *Handler) HandleGetRacks(c *fiber.Ctx) error {
	return c.JSON(h.Store.Racks())
}

func (h *Handler) HandleGetZones(c *fiber.Ctx) error {
	return c.JSON(h.Store.Zones())
}

func (h *Handler) HandleGetRoutes(c *fiber.Ctx) error {
	return c.JSON(h.Store.Routes())
}

// HandleGetScene returns racks with item world positions and closed routes.
func (h *Handler) HandleGetScene(c *fiber.Ctx) error {
	data := h.Store.Data()
	if data == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": services.ErrNoData.Error(),
		})
	}
	return c.JSON(services.ComposeScene(data, h.Store.ActiveFilters(), h.Store.HoveredItem()))
}

// HandleGetItems - 필터링된 아이템 목록
func (h *Handler) HandleGetItems(c *fiber.Ctx) error {
	items := h.Store.FilteredItems()
	return c.JSON(fiber.Map{
		"count":          len(items),
		"active_filters": h.Store.ActiveFilters(),
		"items":          items,
	})
}

// HandleGetConditions returns the legend with per-condition counts.
func (h *Handler) HandleGetConditions(c *fiber.Ctx) error {
	return c.JSON(h.Store.Legend())
}

// HandleGetSlot - ?column=&shelf= 위치 계산
func (h *Handler) HandleGetSlot(c *fiber.Ctx) error {
	column, err := strconv.Atoi(c.Query("column", "1"))
	if err != nil || column < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "column must be a non-negative integer",
		})
	}
	shelf, err := strconv.Atoi(c.Query("shelf", "1"))
	if err != nil || shelf < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "shelf must be a non-negative integer",
		})
	}

	slot := algorithms.GridSlot{Column: column, Shelf: shelf}
	return c.JSON(fiber.Map{
		"slot":   slot,
		"offset": algorithms.MapSlotToOffset(slot),
	})
}

func (h *Handler) HandleGetFilters(c *fiber.Ctx) error {
	return c.JSON(h.Store.FilterState())
}

type setFiltersRequest struct {
	Filters []string `json:"filters"`
}

func (h *Handler) HandleSetFilters(c *fiber.Ctx) error {
	var req setFiltersRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := h.Store.SetActiveFilters(req.Filters); err != nil {
		return filterError(c, err)
	}
	return c.JSON(h.Store.FilterState())
}

type toggleFilterRequest struct {
	Condition string `json:"condition"`
}

func (h *Handler) HandleToggleFilter(c *fiber.Ctx) error {
	var req toggleFilterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := h.Store.ToggleFilter(req.Condition); err != nil {
		return filterError(c, err)
	}
	return c.JSON(h.Store.FilterState())
}

func (h *Handler) HandleSelectAllFilters(c *fiber.Ctx) error {
	h.Store.SelectAllFilters()
	return c.JSON(h.Store.FilterState())
}

func (h *Handler) HandleClearFilters(c *fiber.Ctx) error {
	h.Store.ClearFilters()
	return c.JSON(h.Store.FilterState())
}

type hoverRequest struct {
	SerialNo *string `json:"serial_no"`
}

// HandleSetHover - {"serial_no": null} 이면 호버 해제
func (h *Handler) HandleSetHover(c *fiber.Ctx) error {
	var req hoverRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	serial := ""
	if req.SerialNo != nil {
		serial = *req.SerialNo
	}
	h.Store.SetHoveredItem(serial)
	return c.JSON(h.Store.FilterState())
}

func (h *Handler) HandleGetVehicles(c *fiber.Ctx) error {
	return c.JSON(h.Fleet.Frames())
}

func (h *Handler) HandleGetVehicleStats(c *fiber.Ctx) error {
	return c.JSON(h.Fleet.Statistics())
}

func (h *Handler) HandleGetVehicle(c *fiber.Ctx) error {
	frame, err := h.Fleet.Get(c.Params("name"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(frame)
}

func (h *Handler) HandleGetSystem(c *fiber.Ctx) error {
	return c.JSON(h.SystemInfo())
}

// HandleRemoveVehicle stops animating one vehicle.
func (h *Handler) HandleRemoveVehicle(c *fiber.Ctx) error {
	name := c.Params("name")
	if err := h.Fleet.Remove(name); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	services.Logger().Info("vehicle removed via API", zap.String("route", name))
	return c.JSON(fiber.Map{"success": true})
}

func filterError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	if errors.Is(err, models.ErrUnknownCondition) {
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
