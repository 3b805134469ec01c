package seed

// Entry is a single bookmark in the seed file.
type Entry struct {
	Title  string `yaml:"title"`
	URL    string `yaml:"url"`
	Desc   string `yaml:"desc"`
	Rating int    `yaml:"rating"`
}

// File is the root structure of the seed YAML:
//
//	bookmarks:
//	  - title: Go
//	    url: https://go.dev
//	    desc: The Go programming language
//	    rating: 5
type File struct {
	Bookmarks []Entry `yaml:"bookmarks"`
}
