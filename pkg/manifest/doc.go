// Package manifest reads the "dependencies" of a package.json file and
// writes the file back with some of them pinned.
//
// The document is kept as an ordered list of raw members, so a rewrite
// changes nothing but the pinned dependency values: key order and every
// other field survive. Output is indented with two spaces and ends with a
// newline.
//
//	m, err := manifest.Read("package.json")
//	for _, dep := range m.Dependencies() {
//	    fmt.Println(dep.Name, dep.Range)
//	}
//	err = m.Write("package.json.out", pins)
package manifest
