package model

// ReportRequest carries the suburb and listing filters for one report.
type ReportRequest struct {
	Suburb                    string   `json:"suburb"`
	State                     string   `json:"state"`
	PostCode                  string   `json:"post_code,omitempty"`
	PropertyTypes             []string `json:"property_types,omitempty"`
	MinBedrooms               *int     `json:"min_bedrooms,omitempty"`
	MaxBedrooms               *int     `json:"max_bedrooms,omitempty"`
	MinBathrooms              *int     `json:"min_bathrooms,omitempty"`
	MaxBathrooms              *int     `json:"max_bathrooms,omitempty"`
	MinCarspaces              *int     `json:"min_carspaces,omitempty"`
	MaxCarspaces              *int     `json:"max_carspaces,omitempty"`
	IncludeSurroundingSuburbs bool     `json:"include_surrounding_suburbs"`
	Region                    string   `json:"region,omitempty"`
	Area                      string   `json:"area,omitempty"`
	MinLandArea               *int     `json:"min_land_area,omitempty"`
	MaxLandArea               *int     `json:"max_land_area,omitempty"`
	HomeOwnerPricing          string   `json:"home_owner_pricing,omitempty"`
}

// ReportAgent is one row of the top agents table.
type ReportAgent struct {
	Name            string `json:"name"`
	Agency          string `json:"agency"`
	PhotoURL        string `json:"photo_url"`
	AgencyLogoURL   string `json:"agency_logo_url"`
	TotalSales      int    `json:"total_sales"`
	JointSales      int    `json:"joint_sales"`
	MedianSoldPrice string `json:"median_sold_price"`
	TotalSalesValue string `json:"total_sales_value"`
	JointSalesValue string `json:"joint_sales_value"`
	Featured        bool   `json:"featured"`
	FeaturedPlus    bool   `json:"featured_plus"`
	CommissionRate  string `json:"commission_rate"`
	Discount        string `json:"discount"`
	Marketing       string `json:"marketing"`
}

// AgentsReport is what a renderer receives for a suburb.
type AgentsReport struct {
	Suburb          string        `json:"suburb"`
	State           string        `json:"state"`
	TopAgents       []ReportAgent `json:"top_agents"`
	AgentCommission string        `json:"agent_commission"`
	Discount        string        `json:"discount"`
	Marketing       string        `json:"marketing"`
	AreaType        string        `json:"area_type,omitempty"`
}

// RentalAgency is one row of the top leasing agencies table.
type RentalAgency struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	LogoURL      string `json:"logo_url"`
	ListingCount int    `json:"listing_count"`
	Address      string `json:"address"`
}

// AgencyReport lists the busiest leasing agencies in a suburb.
type AgencyReport struct {
	Suburb      string         `json:"suburb"`
	State       string         `json:"state"`
	TopAgencies []RentalAgency `json:"top_agencies"`
}
