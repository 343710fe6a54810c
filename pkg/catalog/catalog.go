package catalog

// Catalog is the fixed set of documents the quiz generator can draw from.
// Real drive content retrieval is out of scope; the shell's document
// selector reads this list as-is.
type Catalog struct {
	documents []string
}

var defaultDocuments = []string{
	"Mathematics Grade 6.pdf",
	"Algebra Fundamentals.docx",
	"Geometry 101.pdf",
	"World History - 20th Century.pdf",
	"Introduction to Physics.docx",
	"Chemistry Basics.pdf",
	"Literature Anthology Vol.1.pdf",
	"Computer Science Principles.docx",
}

func NewStaticCatalog() *Catalog {
	docs := make([]string, len(defaultDocuments))
	copy(docs, defaultDocuments)
	return &Catalog{documents: docs}
}

// List returns a copy so callers cannot mutate the catalog.
func (c *Catalog) List() []string {
	docs := make([]string, len(c.documents))
	copy(docs, c.documents)
	return docs
}

func (c *Catalog) Contains(name string) bool {
	for _, d := range c.documents {
		if d == name {
			return true
		}
	}
	return false
}
