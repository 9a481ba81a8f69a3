package mem

import "strings"

// Permission encodes page access rights.
type Permission uint8

const (
	PermRead Permission = 1 << iota
	PermWrite
	PermExecute
	// PermUser marks a page as user-mode accessible.
	PermUser
)

// portMask covers the read/write/execute bits a user request may carry.
const portMask = 0x7

// ParsePort validates raw permission bits as supplied by a map request and
// converts them to a Permission. Bits outside the read/write/execute mask are
// rejected, and so is a request with no access bit set at all.
func ParsePort(port uint64) (Permission, error) {
	if port&^portMask != 0 {
		return 0, ErrUnknownPermission
	}
	if port&portMask == 0 {
		return 0, ErrEmptyPermission
	}
	var perm Permission
	if port&0x1 != 0 {
		perm |= PermRead
	}
	if port&0x2 != 0 {
		perm |= PermWrite
	}
	if port&0x4 != 0 {
		perm |= PermExecute
	}
	return perm, nil
}

// ParseFlags converts a textual permission spec i.e "rw", "rx" to a Permission.
func ParseFlags(flags string) (Permission, error) {
	var perm Permission
	for _, r := range strings.ToLower(flags) {
		switch r {
		case 'r':
			perm |= PermRead
		case 'w':
			perm |= PermWrite
		case 'x':
			perm |= PermExecute
		case 'u':
			perm |= PermUser
		default:
			return 0, ErrUnknownPermission
		}
	}
	if perm&(PermRead|PermWrite|PermExecute) == 0 {
		return 0, ErrEmptyPermission
	}
	return perm, nil
}

func (p Permission) String() string {
	var b strings.Builder
	letters := []struct {
		bit Permission
		r   byte
	}{
		{PermRead, 'r'},
		{PermWrite, 'w'},
		{PermExecute, 'x'},
		{PermUser, 'u'},
	}
	for _, l := range letters {
		if p&l.bit != 0 {
			b.WriteByte(l.r)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}
