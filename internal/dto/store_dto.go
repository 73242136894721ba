package dto

type CreateStoreRequest struct {
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Website string `json:"website"`
}

type SetFeaturedRequest struct {
	Featured bool `json:"featured"`
}
