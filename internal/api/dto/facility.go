package dto

type FacilityResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	OpenCloseTimes string   `json:"open_close_times"`
	BusyHours      []string `json:"busy_hours"`
	Prices         string   `json:"prices"`
	PriceKnown     bool     `json:"price_known"`
	MaxFreeHours   float64  `json:"max_free_hours"`
}

type ListFacilityResponse struct {
	Facilities []FacilityResponse `json:"facilities"`
}

type BestFacilityResponse struct {
	Facility       FacilityResponse `json:"facility"`
	DistanceMeters float64          `json:"distance_meters"`
}
