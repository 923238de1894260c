package entity

// Session is the locally held proof of authentication. It is replaced as a
// whole on every change and never mutated in place.
type Session struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// FirstName is what the landing page greets the user with.
func (s *Session) FirstName() string {
	for i, r := range s.Name {
		if r == ' ' {
			return s.Name[:i]
		}
	}
	return s.Name
}
