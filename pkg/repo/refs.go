package repo

// ListRefs lists every reference (branches, tags, HEAD and other special
// refs) in the order the store iterates them.
func (r *Repo) ListRefs() ([]string, error) {
	s, _, err := r.open()
	if err != nil {
		return nil, err
	}
	return s.Refs()
}

// HeadRef returns the current branch's short name, or the full commit id
// when HEAD is detached.
func (r *Repo) HeadRef() (string, error) {
	s, _, err := r.open()
	if err != nil {
		return "", err
	}
	head, err := s.Head()
	if err != nil {
		return "", err
	}
	if head.Detached() {
		return string(head.Commit), nil
	}
	return head.Branch, nil
}
