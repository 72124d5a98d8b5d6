package models

// ========================================
// 메시지 타입 상수
// ========================================
const (
	// Server → Web
	MessageTypeVehicleFrame = "vehicle_frame" // 차량 위치 프레임
	MessageTypeSnapshot     = "snapshot"      // 창고 상태 전체
	MessageTypeDataLoaded   = "data_loaded"   // 데이터 로드 완료
	MessageTypeDataError    = "data_error"    // 데이터 로드 실패
	MessageTypeFilterUpdate = "filter_update" // 필터/호버 변경
	MessageTypeSystemInfo   = "system_info"   // 시스템 정보

	// Web → Server
	MessageTypeToggleFilter     = "toggle_filter"
	MessageTypeSetFilters       = "set_filters"
	MessageTypeSelectAllFilters = "select_all_filters"
	MessageTypeClearFilters     = "clear_filters"
	MessageTypeHoverItem        = "hover_item"
	MessageTypeRetryLoad        = "retry_load"
)

// ========================================
// 공통 WebSocket 메시지 형식
// ========================================
type WebSocketMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"` // Unix timestamp (ms)
}

// ClientMessage is an inbound WebSocket message from a web client.
type ClientMessage struct {
	Type      string   `json:"type"`
	Condition string   `json:"condition,omitempty"` // toggle_filter
	Filters   []string `json:"filters,omitempty"`   // set_filters
	SerialNo  *string  `json:"serial_no,omitempty"` // hover_item, null clears
	Timestamp int64    `json:"timestamp,omitempty"`
}

// ========================================
// 차량 프레임
// ========================================

// VehicleFrame - 한 프레임의 차량 상태
type VehicleFrame struct {
	Route    string       `json:"route"`
	Type     string       `json:"type"`
	Color    string       `json:"color"`
	Segment  int          `json:"segment"`
	Progress float64      `json:"progress"`
	Position Coordinate3D `json:"position"`
	Heading  float64      `json:"heading"` // 라디안
}

// FleetFrame is broadcast once per simulation tick.
type FleetFrame struct {
	Tick     uint64         `json:"tick"`
	Delta    float64        `json:"delta"` // seconds since previous tick
	Vehicles []VehicleFrame `json:"vehicles"`
}

// ========================================
// 스토어 상태
// ========================================

// FilterState - 필터/호버 상태
type FilterState struct {
	ActiveFilters []ItemCondition `json:"active_filters"`
	HoveredItem   *string         `json:"hovered_item"`
}

// StoreSnapshot - 스토어 전체 상태
type StoreSnapshot struct {
	Data          *WarehouseData  `json:"data"`
	IsLoading     bool            `json:"is_loading"`
	Error         *string         `json:"error"`
	ActiveFilters []ItemCondition `json:"active_filters"`
	HoveredItem   *string         `json:"hovered_item"`
}

// ConditionSummary - 범례 항목 (색상, 개수, 활성 여부)
type ConditionSummary struct {
	Condition ItemCondition `json:"condition"`
	Color     string        `json:"color"`
	Count     int           `json:"count"`
	Active    bool          `json:"active"`
}

// ========================================
// 시스템 정보
// ========================================
type SystemInfo struct {
	ConnectedClients int    `json:"connected_clients"`
	Vehicles         int    `json:"vehicles"`
	DataSource       string `json:"data_source"`
	ServerTime       string `json:"server_time"`
}
