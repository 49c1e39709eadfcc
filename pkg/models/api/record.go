package api

import "time"

type ServiceRecord struct {
	Timestamp       time.Time `json:"timestamp"`
	TechnicianID    string    `json:"technician_id"`
	City            string    `json:"city"`
	Base            string    `json:"base"`
	BaseType        string    `json:"base_type"`
	Status          string    `json:"status"`
	ServiceType     string    `json:"service_type"`
	Latitude        *float64  `json:"latitude"`
	Longitude       *float64  `json:"longitude"`
	TechnicianValue float64   `json:"technician_value"`
	CompanyValue    float64   `json:"company_value"`
	Unparsed        []string  `json:"unparsed,omitempty"`
	Contract        string    `json:"contract,omitempty"`
	OrderID         string    `json:"order_id,omitempty"`
}

type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

type TimePeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  int       `json:"days"`
}

type NormalizeStats struct {
	Input            int `json:"input"`
	Kept             int `json:"kept"`
	DroppedTimestamp int `json:"dropped_timestamp"`
	OutOfRange       int `json:"out_of_range"`
	UnparsedCurrency int `json:"unparsed_currency"`
	MissingLocation  int `json:"missing_location"`
}

type ServicesResponse struct {
	Period     *TimePeriod     `json:"period,omitempty"`
	Records    []ServiceRecord `json:"records"`
	Notices    []Notice        `json:"notices"`
	Stats      NormalizeStats  `json:"stats"`
	Failed     bool            `json:"failed"`
	Invalid    bool            `json:"invalid,omitempty"`
	DurationMS int64           `json:"duration_ms"`
}

type DateBounds struct {
	First   *time.Time `json:"first"`
	Last    *time.Time `json:"last"`
	Count   int64      `json:"count"`
	Notices []Notice   `json:"notices"`
}

type Columns struct {
	Columns  []string          `json:"columns"`
	Resolved map[string]string `json:"resolved"`
}
