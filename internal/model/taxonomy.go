package model

// Genre is a tagging dimension shared by videos and subscriptions.
type Genre struct {
	ID          string // genres.id
	Name        string // genres.name
	Slug        string // genres.slug
	Description string // genres.description
	Icon        string // genres.icon
}

// CountriesGroup groups countries (e.g. by region) for catalog browsing.
type CountriesGroup struct {
	ID   string // countries_groups.id
	Name string // countries_groups.name
}

// Country is the second tagging dimension.
type Country struct {
	ID      string // countries.id
	Name    string // countries.name
	GroupID string // countries.group_id
}
