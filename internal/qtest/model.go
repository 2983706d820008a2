package qtest

// model mirrors the contents the queue should hold. Head insertions are
// kept in front in reverse, so the logical order is reverse(front) + back
// and both ends grow by appending.
type model struct {
	front []string
	back  []string
}

func (m *model) pushHead(v string) {
	m.front = append(m.front, v)
}

func (m *model) pushTail(v string) {
	m.back = append(m.back, v)
}

func (m *model) popHead() (string, bool) {
	if n := len(m.front); n > 0 {
		v := m.front[n-1]
		m.front = m.front[:n-1]
		return v, true
	}
	if len(m.back) > 0 {
		v := m.back[0]
		m.back = m.back[1:]
		return v, true
	}
	return "", false
}

func (m *model) len() int {
	return len(m.front) + len(m.back)
}

func (m *model) reverse() {
	m.front, m.back = m.back, m.front
}

func (m *model) reset() {
	m.front, m.back = nil, nil
}

// head returns up to n values starting at the head.
func (m *model) head(n int) []string {
	values := make([]string, 0, min(n, m.len()))
	for i := len(m.front) - 1; i >= 0 && len(values) < n; i-- {
		values = append(values, m.front[i])
	}
	for i := 0; i < len(m.back) && len(values) < n; i++ {
		values = append(values, m.back[i])
	}
	return values
}
