package events

// Event is one browsable happening from the remote catalog. Events are
// transient: they live only in the per-user page list and carry no identity
// beyond their position in it.
type Event struct {
	Title    string
	Place    string
	Address  string
	Price    string
	URL      string
	ImageURL string
}

// Category is one of the user-facing event categories.
type Category string

const (
	CategoryConcert    Category = "concert"
	CategoryExhibition Category = "exhibition"
	CategoryFun        Category = "fun"
)

// catalogCategory maps a user-facing category onto the provider's identifier.
// Anything unrecognized falls back to all categories.
func catalogCategory(c Category) string {
	switch c {
	case CategoryConcert:
		return "concert"
	case CategoryExhibition:
		return "exhibition"
	case CategoryFun:
		return "entertainment"
	default:
		return "all"
	}
}

// catalog API response shapes; only the fields we request.

type catalogResponse struct {
	Results []catalogEvent `json:"results"`
}

type catalogEvent struct {
	Title   string         `json:"title"`
	Place   *catalogPlace  `json:"place"`
	Price   string         `json:"price"`
	Images  []catalogImage `json:"images"`
	SiteURL string         `json:"site_url"`
}

type catalogPlace struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type catalogImage struct {
	Image string `json:"image"`
}

func (e catalogEvent) toEvent() Event {
	ev := Event{
		Title: e.Title,
		Price: e.Price,
		URL:   e.SiteURL,
	}
	if e.Place != nil {
		ev.Place = e.Place.Name
		ev.Address = e.Place.Address
	}
	if len(e.Images) > 0 {
		ev.ImageURL = e.Images[0].Image
	}
	return ev
}
