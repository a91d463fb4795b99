package europepmc

// SearchResponse is the top-level structure of a Europe PMC search answer.
type SearchResponse struct {
	HitCount   int `json:"hitCount"`
	ResultList struct {
		Result []Article `json:"result"`
	} `json:"resultList"`
}

// Article is one entry of the result list.
type Article struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	PMID         string `json:"pmid"`
	DOI          string `json:"doi"`
	Title        string `json:"title"`
	AuthorString string `json:"authorString"`
	PubYear      string `json:"pubYear"`
	AuthorList   struct {
		Author []Author `json:"author"`
	} `json:"authorList"`
}

// Author is one entry of an article's author list.
type Author struct {
	FullName  string `json:"fullName"`
	LastName  string `json:"lastName"`
	Initials  string `json:"initials"`
	FirstName string `json:"firstName"`
}
