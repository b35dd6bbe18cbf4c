// Package diagtree holds a tree of diagnostics. Only nodes that carry a description, and
// the nodes leading to them, are displayed.
package diagtree

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"
)

type Node struct {
	Title       string
	Description string
	Severity    Severity

	children []*Node
	byTitle  map[string]*Node
	shown    bool
	parent   *Node
}

func (m *Node) child(title string) *Node {
	contract.Assertf(title != "", "diagnostic nodes need a title")
	if c, ok := m.byTitle[title]; ok {
		return c
	}
	c := &Node{Title: title, parent: m}
	if m.byTitle == nil {
		m.byTitle = map[string]*Node{}
	}
	m.byTitle[title] = c
	m.children = append(m.children, c)
	return c
}

// Label returns the child section called name, creating it if needed.
func (m *Node) Label(name string) *Node {
	return m.child(name)
}

// Value returns the child for a concrete value. Values are displayed quoted.
func (m *Node) Value(value string) *Node {
	return m.child(fmt.Sprintf("%q", value))
}

// SetDescription marks m, and every node above it, as displayed.
func (m *Node) SetDescription(level Severity, msg string, a ...any) {
	for n := m; n != nil && !n.shown; n = n.parent {
		n.shown = true
	}
	m.Description = fmt.Sprintf(msg, a...)
	m.Severity = level
}

// PathTitles lists the titles from the root down to m, skipping untitled nodes.
func (m *Node) PathTitles() []string {
	var parts []string
	for n := m; n != nil; n = n.parent {
		if n.Title != "" {
			parts = append(parts, n.Title)
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return parts
}

// WalkDisplayed visits every displayed node depth first, in insertion order.
func (m *Node) WalkDisplayed(visit func(*Node)) {
	if m == nil || !m.shown || visit == nil {
		return
	}
	visit(m)
	for _, c := range m.children {
		c.WalkDisplayed(visit)
	}
}

// Worst is the highest severity of any displayed node under m.
func (m *Node) Worst() Severity {
	worst := None
	m.WalkDisplayed(func(n *Node) {
		if n.Severity.rank > worst.rank {
			worst = n.Severity
		}
	})
	return worst
}

// Display writes the displayed part of the tree as markdown, stopping after max lines
// (-1 for no limit). It returns the number of described nodes, including the ones past
// the limit.
func (m *Node) Display(out io.Writer, max int) int {
	return m.display(&cappedWriter{remaining: max, out: out}, 0, true)
}

func (m *Node) display(out *cappedWriter, level int, prefix bool) int {
	if m == nil || !m.shown {
		return 0
	}

	var described int
	if m.Title != "" {
		var line string
		if prefix {
			line = headingPrefix(level)
			if level > 1 || m.Severity != None {
				line += m.severityMarker()
			}
		}
		line += m.Title
		if m.Description != "" {
			described++
			line += " " + m.Description
		}
		out.write(line)
		out.incr()
	}

	// A plain node with a single displayed child is folded onto one line.
	if level > 1 && m.Severity == None {
		if only := m.onlyChild(); only != nil {
			out.write(": ")
			return only.display(out, level, false) + described
		}
	}

	children := m.children
	if level > 0 {
		children = make([]*Node, len(m.children))
		copy(children, m.children)
		sort.SliceStable(children, func(i, j int) bool {
			return children[i].Title < children[j].Title
		})
	}

	opened := false
	for _, c := range children {
		if !c.shown {
			continue
		}
		if !opened {
			if level > 1 {
				out.write(":\n")
			} else {
				out.write("\n")
			}
			opened = true
		}
		described += c.display(out, level+1, true)
	}
	if !opened {
		out.write("\n")
	}
	return described
}

func headingPrefix(level int) string {
	switch {
	case level < 0:
		return ""
	case level == 0:
		return "### "
	case level == 1:
		return "#### "
	default:
		return strings.Repeat("    ", level-2) + "- "
	}
}

// onlyChild returns the single displayed child of m, or nil if there are zero or several.
func (m *Node) onlyChild() *Node {
	var only *Node
	for _, c := range m.children {
		if !c.shown {
			continue
		}
		if only != nil {
			return nil
		}
		only = c
	}
	return only
}

// severityMarker follows a chain of single children, since those are folded onto the same
// line as m.
func (m *Node) severityMarker() string {
	n := m
	for {
		only := n.onlyChild()
		if only == nil {
			break
		}
		n = only
	}
	if n.Severity == None {
		return ""
	}
	return n.Severity.String() + " "
}

type cappedWriter struct {
	// remaining is the number of lines left; -1 means unlimited.
	remaining int
	out       io.Writer
}

func (c *cappedWriter) incr() {
	if c.remaining > 0 {
		c.remaining--
	}
}

func (c *cappedWriter) write(s string) {
	if c.remaining == 0 {
		return
	}
	_, err := io.WriteString(c.out, s)
	contract.AssertNoErrorf(err, "failed to write diagnostics")
}

// Severity of a diagnostic. Nodes with their own severity are always displayed on their
// own line.
type Severity struct {
	name string
	icon string
	rank int
}

var (
	None   = Severity{}
	Info   = Severity{name: "info", icon: "`🟢`", rank: 1}
	Warn   = Severity{name: "warn", icon: "`🟡`", rank: 2}
	Danger = Severity{name: "danger", icon: "`🔴`", rank: 3}
)

func (s Severity) String() string {
	return s.icon
}

// Name is the lower case name of the severity, "none" for None.
func (s Severity) Name() string {
	if s.name == "" {
		return "none"
	}
	return s.name
}

// AtLeast reports whether s is as severe as other.
func (s Severity) AtLeast(other Severity) bool {
	return s.rank >= other.rank
}

// ParseSeverity reads a severity from its Name.
func ParseSeverity(name string) (Severity, error) {
	for _, s := range []Severity{None, Info, Warn, Danger} {
		if strings.EqualFold(name, s.Name()) {
			return s, nil
		}
	}
	return None, fmt.Errorf("unknown severity %q, expected one of none, info, warn, danger", name)
}
