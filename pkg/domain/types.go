package domain

import (
	"strconv"
	"strings"
)

// ListingType selects sold or leased listings.
type ListingType string

const (
	ListingSold ListingType = "Sold"
	ListingRent ListingType = "Rent"
)

// AllPropertyTypes is sent on every search; callers filter afterwards.
var AllPropertyTypes = []string{
	"AcreageSemiRural", "ApartmentUnitFlat", "Aquaculture", "BlockOfUnits",
	"CarSpace", "DairyFarming", "DevelopmentSite", "Duplex", "Farm",
	"FishingForestry", "NewHomeDesigns", "House", "NewHouseLand",
	"IrrigationServices", "NewLand", "Livestock", "NewApartments", "Penthouse",
	"RetirementVillage", "Rural", "SemiDetached", "SpecialistFarm", "Studio",
	"Terrace", "Townhouse", "VacantLand", "Villa", "Cropping", "Viticulture",
	"MixedFarming", "Grazing", "Horticulture", "Equine", "Farmlet", "Orchard",
	"RuralLifestyle",
}

// SearchResult is one element of a residential search response.
type SearchResult struct {
	Type    string   `json:"type"`
	Listing *Listing `json:"listing"`
}

// Listing is a sold or rental listing.
type Listing struct {
	ID              int64            `json:"id"`
	ListingType     string           `json:"listingType"`
	Advertiser      *Advertiser      `json:"advertiser"`
	SoldData        *SoldData        `json:"soldData"`
	PropertyDetails *PropertyDetails `json:"propertyDetails"`
}

// Key is the listing id as a map key, or "" when the id is missing.
func (l *Listing) Key() string {
	if l == nil || l.ID == 0 {
		return ""
	}
	return strconv.FormatInt(l.ID, 10)
}

// PropertyType returns the listed property type, if any.
func (l *Listing) PropertyType() string {
	if l == nil || l.PropertyDetails == nil {
		return ""
	}
	return l.PropertyDetails.PropertyType
}

// Advertiser is the agency or private seller behind a listing.
type Advertiser struct {
	Type     string    `json:"type"`
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	LogoURL  string    `json:"logoUrl"`
	Contacts []Contact `json:"contacts"`
}

// IsAgency reports whether the advertiser is an agency with an id and name.
func (a *Advertiser) IsAgency() bool {
	return a != nil && strings.EqualFold(a.Type, "Agency") && a.ID != 0 && a.Name != ""
}

// Contact is an agent attached to a listing.
type Contact struct {
	Name     string `json:"name"`
	PhotoURL string `json:"photoUrl"`
}

// SoldData carries the sale outcome. SoldPrice is nil when undisclosed.
type SoldData struct {
	SoldPrice *float64 `json:"soldPrice"`
	SoldDate  string   `json:"soldDate"`
}

// PropertyDetails is the subset of property fields the pipeline reads.
type PropertyDetails struct {
	PropertyType       string `json:"propertyType"`
	DisplayableAddress string `json:"displayableAddress"`
	Suburb             string `json:"suburb"`
	State              string `json:"state"`
	Postcode           string `json:"postcode"`
}

// Agency is the agencies/{id} response.
type Agency struct {
	ID      int64         `json:"id"`
	Name    string        `json:"name"`
	Profile AgencyProfile `json:"profile"`
	Details AgencyDetails `json:"details"`
}

// AgencyProfile holds branding.
type AgencyProfile struct {
	AgencyLogoStandard string `json:"agencyLogoStandard"`
	AgencyLogoSmall    string `json:"agencyLogoSmall"`
}

// AgencyDetails holds the office address.
type AgencyDetails struct {
	StreetAddress1 string `json:"streetAddress1"`
	StreetAddress2 string `json:"streetAddress2"`
	Suburb         string `json:"suburb"`
	State          string `json:"state"`
	Postcode       string `json:"postcode"`
}

// Address joins the non-empty address parts with ", ".
func (a *Agency) Address() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{
		a.Details.StreetAddress1, a.Details.StreetAddress2,
		a.Details.Suburb, a.Details.State, a.Details.Postcode,
	} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// AgentSummary is one agents/search hit.
type AgentSummary struct {
	AgentID    int64  `json:"agentId"`
	Name       string `json:"name"`
	Thumbnail  string `json:"thumbnail"`
	AgencyID   int64  `json:"agencyId"`
	AgencyName string `json:"agencyName"`
}

// AgencySummary is one agencies?q= hit.
type AgencySummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AgentProfile is the best-effort result of LookupAgent.
type AgentProfile struct {
	AgentID    int64  `json:"agent_id"`
	PhotoURL   string `json:"agent_photo"`
	AgencyName string `json:"agency_name"`
	AgencyLogo string `json:"agency_logo"`
}
