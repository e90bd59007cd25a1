package domain

// Shop is the branding of a merchant's tracking page.
type Shop struct {
	ID           string  `json:"id" bson:"_id"`
	OwnerID      string  `json:"owner_id" bson:"owner_id"`
	Slug         string  `json:"slug" bson:"slug"`
	Name         string  `json:"name" bson:"name"`
	LogoURL      *string `json:"logo_url" bson:"logo_url,omitempty"`
	PrimaryColor string  `json:"primary_color" bson:"primary_color"`
	Domain       *string `json:"domain" bson:"domain,omitempty"`
}
