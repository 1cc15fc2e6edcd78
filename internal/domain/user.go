package domain

// User is a directory entry. The identifier is assigned by the store on
// creation and never changes afterwards.
type User struct {
	ID          string `json:"userId"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

// UserPatch carries a partial update. An empty field leaves the stored value
// unchanged; a patch never nulls anything out.
type UserPatch struct {
	FullName    string
	Email       string
	PhoneNumber string
}
