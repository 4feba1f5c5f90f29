package model

// Person is a cast or crew member. The photo URL is stored encrypted with
// its IV, same scheme as video URLs, but is never entitlement-gated.
type Person struct {
	ID         string // persons.id
	Name       string // persons.name
	Surname    string // persons.surname
	Patronymic string // persons.patronymic (optional)
	Slug       string // persons.slug
	Photo      []byte // persons.photo
	PhotoIV    []byte // persons.photo_iv
}

// Role names a crew function (actor, director, ...).
type Role struct {
	ID   string // roles.id
	Name string // roles.name
}

// Crew links a person to a video in a given role.
type Crew struct {
	VideoID  string // crews.video_id
	PersonID string // crews.person_id
	RoleID   string // crews.role_id
}
