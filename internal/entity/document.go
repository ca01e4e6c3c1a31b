package entity

// Document is the whole persisted state: every user and every artwork.
type Document struct {
	Users    map[string]*User `json:"users"`
	Artworks []Artwork        `json:"artworks"`
}

func NewDocument() *Document {
	return &Document{
		Users:    make(map[string]*User),
		Artworks: make([]Artwork, 0),
	}
}

// ArtworkIndex returns the position of the artwork with the given id, or -1.
func (d *Document) ArtworkIndex(id string) int {
	for i := range d.Artworks {
		if d.Artworks[i].ID == id {
			return i
		}
	}
	return -1
}
