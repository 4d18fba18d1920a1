package version

// legacyMajor is the major version whose files store the minor version in
// two digits and carry no patch digit (2.49, 2.50, ..., 2.93).
const legacyMajor = 2

// Decode converts the version integer stored in a .blend file header into a
// Version.
//
// Two encodings are in use:
//   - 2.x files: raw = major*100 + minor (250 is 2.50.0)
//   - 3.0 and later: raw = major*100 + minor*10 + patch (405 is 4.0.5)
//
// Decode is total. Values that no real file carries still decode to a
// well-defined (if meaningless) Version.
func Decode(raw uint) Version {
	major := raw / 100
	rem := raw % 100

	if major == legacyMajor {
		return Version{Major: major, Minor: rem}
	}
	return Version{Major: major, Minor: rem / 10, Patch: rem % 10}
}
