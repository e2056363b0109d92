package models

// ChargingType is the connector family offered by a station.
type ChargingType string

const (
	ChargingTypeAC ChargingType = "AC"
	ChargingTypeDC ChargingType = "DC"
)

// ChargingTypes lists accepted charging types in display order.
var ChargingTypes = []ChargingType{ChargingTypeAC, ChargingTypeDC}

// Valid reports whether t is a known charging type.
func (t ChargingType) Valid() bool {
	return t == ChargingTypeAC || t == ChargingTypeDC
}

// Station describes a charging station as served by /Station.
type Station struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Location       string       `json:"location"`
	Type           ChargingType `json:"type"`
	AvailableSlots int          `json:"availableSlots"`
	IsActive       bool         `json:"isActive"`
}

// StationInput is the create payload of the station form.
type StationInput struct {
	Name           string       `json:"name"`
	Location       string       `json:"location"`
	Type           ChargingType `json:"type"`
	AvailableSlots int          `json:"availableSlots"`
	IsActive       bool         `json:"isActive"`
}

// Record returns the input as a field map for schema validation.
func (in StationInput) Record() map[string]any {
	return map[string]any{
		"name":           in.Name,
		"location":       in.Location,
		"type":           string(in.Type),
		"availableSlots": in.AvailableSlots,
		"isActive":       in.IsActive,
	}
}

// StationPatch carries a partial station edit; nil fields are left untouched.
type StationPatch struct {
	Name           *string       `json:"name,omitempty"`
	Location       *string       `json:"location,omitempty"`
	Type           *ChargingType `json:"type,omitempty"`
	AvailableSlots *int          `json:"availableSlots,omitempty"`
	IsActive       *bool         `json:"isActive,omitempty"`
}

// Record returns only the fields present in the patch.
func (p StationPatch) Record() map[string]any {
	rec := make(map[string]any)
	if p.Name != nil {
		rec["name"] = *p.Name
	}
	if p.Location != nil {
		rec["location"] = *p.Location
	}
	if p.Type != nil {
		rec["type"] = string(*p.Type)
	}
	if p.AvailableSlots != nil {
		rec["availableSlots"] = *p.AvailableSlots
	}
	if p.IsActive != nil {
		rec["isActive"] = *p.IsActive
	}
	return rec
}

// Apply merges the patch into s and returns the result.
func (p StationPatch) Apply(s Station) Station {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Location != nil {
		s.Location = *p.Location
	}
	if p.Type != nil {
		s.Type = *p.Type
	}
	if p.AvailableSlots != nil {
		s.AvailableSlots = *p.AvailableSlots
	}
	if p.IsActive != nil {
		s.IsActive = *p.IsActive
	}
	return s
}

// StationStats summarises a station list for the overview cards.
type StationStats struct {
	Total        int `json:"total"`
	Active       int `json:"active"`
	Inactive     int `json:"inactive"`
	TotalSlots   int `json:"totalSlots"`
	AC           int `json:"ac"`
	DC           int `json:"dc"`
	ACPercentage int `json:"acPercentage"`
	DCPercentage int `json:"dcPercentage"`
}
