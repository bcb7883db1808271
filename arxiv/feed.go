package arxiv

// Atom feed shapes returned by the export.arxiv.org query endpoint.

type feed struct {
	TotalResults int     `xml:"http://a9.com/-/spec/opensearch/1.1/ totalResults"`
	Entries      []entry `xml:"entry"`
}

type entry struct {
	ID              string     `xml:"id"`
	Title           string     `xml:"title"`
	Summary         string     `xml:"summary"`
	Published       string     `xml:"published"`
	Updated         string     `xml:"updated"`
	Authors         []author   `xml:"author"`
	Links           []link     `xml:"link"`
	Categories      []category `xml:"category"`
	PrimaryCategory category   `xml:"http://arxiv.org/schemas/atom primary_category"`
	Comment         string     `xml:"http://arxiv.org/schemas/atom comment"`
	JournalRef      string     `xml:"http://arxiv.org/schemas/atom journal_ref"`
	DOI             string     `xml:"http://arxiv.org/schemas/atom doi"`
}

type author struct {
	Name string `xml:"name"`
}

type link struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}

type category struct {
	Term string `xml:"term,attr"`
}
