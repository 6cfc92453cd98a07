package saml

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a SAML protocol version as a (major, minor) pair
type Version struct {
	Major int
	Minor int
}

// Version20 is SAML 2.0, the only version accepted by the binding layer
var Version20 = Version{Major: 2, Minor: 0}

// ParseVersion parses the wire form of a version attribute (e.g. "2.0")
func ParseVersion(value string) (Version, error) {
	parts := strings.Split(value, ".")
	if len(parts) != 2 {
		return Version{}, fmt.Errorf("malformed SAML version '%s'", value)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Version{}, fmt.Errorf("malformed SAML major version '%s'", parts[0])
	}

	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return Version{}, fmt.Errorf("malformed SAML minor version '%s'", parts[1])
	}

	return Version{Major: major, Minor: minor}, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}
