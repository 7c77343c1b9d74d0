package opendata

// Wire-format records as served by the Ghent open-data portal. Field names
// follow the upstream datasets exactly, including the Dutch names and the
// 0/1 integer flags; the mappers isolate those quirks from the domain model.
// Pointer fields distinguish "absent" from zero values so that missing
// required fields surface as mapping failures instead of silent defaults.

// Envelope is the common response wrapper of the records endpoints.
type Envelope[R any] struct {
	TotalCount int `json:"total_count"`
	Results    []R `json:"results"`
}

// GeoPoint is the portal's coordinate pair.
type GeoPoint struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// ArticleRecord is one row of recente-nieuwsberichten-van-stadgent. Inhoud
// carries a full embedded HTML document.
type ArticleRecord struct {
	Titel           string `json:"titel"`
	Publicatiedatum string `json:"publicatiedatum"`
	Inhoud          string `json:"inhoud,omitempty"`
	Nieuwsbericht   string `json:"nieuwsbericht"`
}

// CarParkRecord is one row of bezetting-parkeergarages-real-time.
type CarParkRecord struct {
	Name                string    `json:"name"`
	LastUpdate          string    `json:"lastupdate"`
	TotalCapacity       *int      `json:"totalcapacity"`
	AvailableCapacity   *int      `json:"availablecapacity"`
	Description         string    `json:"description"`
	Text                *string   `json:"text,omitempty"`
	IsOpenNow           *int      `json:"isopennow"`
	TemporaryClosed     *int      `json:"temporaryclosed"`
	FreeParking         *int      `json:"freeparking"`
	OperatorInformation string    `json:"operatorinformation"`
	Categorie           string    `json:"categorie,omitempty"`
	Location            *GeoPoint `json:"location"`
}

// StudyLocationRecord is one row of bloklocaties-gent.
type StudyLocationRecord struct {
	ID                    *int64    `json:"id"`
	Titel                 string    `json:"titel"`
	Label                 string    `json:"label_1"`
	Adres                 string    `json:"adres"`
	TotaleCapaciteit      *int      `json:"totale_capaciteit"`
	GereserveerdePlaatsen *int      `json:"gereserveerde_plaatsen"`
	LeesMeer              string    `json:"lees_meer"`
	TeaserImgURL          string    `json:"teaser_img_url,omitempty"`
	GeoPunt               *GeoPoint `json:"geo_punt"`
	Tag1                  *string   `json:"tag_1,omitempty"`
	Tag2                  *string   `json:"tag_2,omitempty"`
}
