package ti

import "strings"

// Node is a node of a token tree: a leaf token or a parenthesized list.
type Node struct {
	Token  Token   // valid if !IsList
	List   []*Node // valid if IsList
	IsList bool
	Line   int
}

// n.String() returns the node in parenthesized form, for debugging.
func (n *Node) String() string {
	if !n.IsList {
		return n.Token.String()
	}
	s := make([]string, len(n.List))
	for i, c := range n.List {
		s[i] = c.String()
	}
	return "[" + strings.Join(s, " ") + "]"
}

// BuildTree groups tokens into nested lists by matching parentheses.
// The result is a list node holding the top-level expressions.
// Surplus ")" at the end of the input are tolerated.
func BuildTree(tokens []Token) (*Node, error) {
	n := len(tokens)
	var parseStart func(start, line int, nested bool) (*Node, int, error)
	parseStart = func(start, line int, nested bool) (*Node, int, error) {
		node := &Node{IsList: true, Line: line}
		i := start
		for i < n {
			t := tokens[i]
			switch t.Kind {
			case LParen:
				child, j, err := parseStart(i+1, t.Line, true)
				if err != nil {
					return nil, n, err
				}
				node.List = append(node.List, child)
				i = j
			case RParen:
				return node, i + 1, nil
			default:
				node.List = append(node.List, &Node{Token: t, Line: t.Line})
				i++
			}
		}
		if nested {
			err := NewEvalError(SyntaxError,
				"check the parentheses: unexpected end of input").at(line)
			err.incomplete = true
			return nil, n, err
		}
		return node, n, nil
	}

	tree, end, err := parseStart(0, 1, false)
	if err != nil {
		return nil, err
	}
	for i := end; i < n; i++ {
		if tokens[i].Kind != RParen {
			return nil, NewEvalError(SyntaxError,
				"check the parentheses").at(tokens[i].Line)
		}
	}
	if len(tokens) > 0 {
		tree.Line = tokens[0].Line
	}
	return tree, nil
}

// TranslateQuote rewrites every QUOTE followed by a sibling x
// into the list (quote x).  It works right to left so that ''a
// becomes (quote (quote a)).
func TranslateQuote(node *Node) (*Node, error) {
	if !node.IsList {
		return node, nil
	}
	rest := make([]*Node, 0, len(node.List))
	for i := len(node.List) - 1; i >= 0; i-- {
		c := node.List[i]
		if c.IsList {
			t, err := TranslateQuote(c)
			if err != nil {
				return nil, err
			}
			rest = append(rest, t)
		} else if c.Token.Kind == Quote {
			if len(rest) == 0 {
				return nil, NewEvalError(SyntaxError,
					"nothing follows quote").at(c.Line)
			}
			last := len(rest) - 1
			quote := &Node{Token: Token{Symbol, Quote_.Name, c.Line}, Line: c.Line}
			rest[last] = &Node{
				List:   []*Node{quote, rest[last]},
				IsList: true,
				Line:   c.Line,
			}
		} else {
			rest = append(rest, c)
		}
	}
	// rest holds the children in reverse order.
	for i, j := 0, len(rest)-1; i < j; i, j = i+1, j-1 {
		rest[i], rest[j] = rest[j], rest[i]
	}
	return &Node{List: rest, IsList: true, Line: node.Line}, nil
}

// Program is the result of reading a source text.
type Program struct {
	Exprs *Cell         // the top-level expressions
	Lines map[*Cell]int // the source line of each non-empty list
}

// ParseTree converts a token tree into an expression.
func ParseTree(node *Node) (Any, error) {
	return parseTree(node, nil)
}

func parseTree(node *Node, lines map[*Cell]int) (Any, error) {
	if !node.IsList {
		return parseToken(node.Token)
	}
	var result Any = Nil
	p := &result
	for _, c := range node.List {
		v, err := parseTree(c, lines)
		if err != nil {
			return nil, err
		}
		x := &Cell{v, Nil}
		*p = x
		p = &x.Cdr
	}
	if j := result.(*Cell); j != Nil && lines != nil {
		lines[j] = node.Line
	}
	return result, nil
}

func parseToken(t Token) (Any, error) {
	switch t.Kind {
	case Number:
		n, err := ParseNumber(t.Raw)
		if err != nil {
			return nil, err.(*EvalError).at(t.Line)
		}
		return n, nil
	case String:
		return t.Raw, nil
	case Symbol:
		return NewSym(t.Raw), nil
	}
	return nil, NewEvalError(SyntaxError, "unknown token type: %v", t.Kind).at(t.Line)
}

// Read reads all expressions from text.
// A LexError stops reading even though Tokenize itself goes on.
func Read(text string) (*Program, error) {
	tokens, err := Tokenize(text)
	if err != nil {
		return nil, err
	}
	tree, err := BuildTree(tokens)
	if err != nil {
		return nil, err
	}
	tree, err = TranslateQuote(tree)
	if err != nil {
		return nil, err
	}
	prog := &Program{Lines: make(map[*Cell]int)}
	x, err := parseTree(tree, prog.Lines)
	if err != nil {
		return nil, err
	}
	prog.Exprs = x.(*Cell)
	return prog, nil
}
