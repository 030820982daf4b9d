package core

// Identity is the caller-supplied user record announced at hello. The relay
// trusts it as given; the launcher obtains it from Discord before connecting.
type Identity struct {
	ID           string
	Name         string
	Avatar       *string
	DisplayRoles []string
}
