package wire

// Request is one client frame: a client-chosen tag for reply correlation and
// a command body.
type Request struct {
	Tag  string
	Body RequestBody
}

// RequestBody is implemented by the command bodies a request can carry.
type RequestBody interface {
	// Verb returns the command literal used on the wire.
	Verb() string
}

// Send asks the server to route a message to another user.
type Send struct {
	Receiver string
	Message  string
}

// Login is the authentication handshake. It is only legal on an
// unauthenticated connection.
type Login struct {
	Name     string
	Password string
}

// SetName renames an authenticated user. The original name becomes available
// again to other sessions.
type SetName struct {
	Name string
}

// Logout closes the connection.
type Logout struct{}

// Nop does nothing and succeeds. Clients use it as a keepalive probe.
type Nop struct{}

func (Send) Verb() string    { return "Send" }
func (Login) Verb() string   { return "Login" }
func (SetName) Verb() string { return "SetName" }
func (Logout) Verb() string  { return "Logout" }
func (Nop) Verb() string     { return "Nop" }

// ParseRequest parses one wire line into a Request. Parse failures return a
// *ParseError carrying the request tag when one was recovered.
func ParseRequest(line string) (Request, error) {
	tokens, err := Tokenize(line)
	if err != nil {
		return Request{}, err
	}

	if len(tokens) < 2 {
		tag := ""
		if len(tokens) == 1 {
			tag = tokens[0]
		}
		return Request{}, &ParseError{Tag: tag, Input: line}
	}

	tag, verb, args := tokens[0], tokens[1], tokens[2:]

	var body RequestBody
	switch verb {
	case "Send":
		if len(args) != 2 {
			return Request{}, &ParseError{Tag: tag, Input: line}
		}
		body = Send{Receiver: args[0], Message: args[1]}
	case "Login":
		if len(args) != 2 {
			return Request{}, &ParseError{Tag: tag, Input: line}
		}
		body = Login{Name: args[0], Password: args[1]}
	case "SetName":
		if len(args) != 1 {
			return Request{}, &ParseError{Tag: tag, Input: line}
		}
		body = SetName{Name: args[0]}
	case "Logout":
		if len(args) != 0 {
			return Request{}, &ParseError{Tag: tag, Input: line}
		}
		body = Logout{}
	case "Nop":
		if len(args) != 0 {
			return Request{}, &ParseError{Tag: tag, Input: line}
		}
		body = Nop{}
	default:
		return Request{}, &ParseError{Tag: tag, Input: line}
	}

	return Request{Tag: tag, Body: body}, nil
}

// Render emits the request as a wire line without the trailing LF.
func (r Request) Render() string {
	tokens := []string{r.Tag, r.Body.Verb()}
	switch b := r.Body.(type) {
	case Send:
		tokens = append(tokens, b.Receiver, b.Message)
	case Login:
		tokens = append(tokens, b.Name, b.Password)
	case SetName:
		tokens = append(tokens, b.Name)
	}
	return Detokenize(tokens)
}
