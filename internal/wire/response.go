package wire

import "fmt"

// Code identifies a wire-level error reply.
type Code string

const (
	CodeBadCommand   Code = "BadCommand"
	CodeUnauthorized Code = "Unauthorized"
	CodeDuplicate    Code = "Duplicate"
	CodeNotFound     Code = "NotFound"
)

// ParseCode converts a wire token into a Code. The match is case-sensitive.
func ParseCode(tok string) (Code, bool) {
	switch Code(tok) {
	case CodeBadCommand, CodeUnauthorized, CodeDuplicate, CodeNotFound:
		return Code(tok), true
	}
	return "", false
}

// Response is one server frame. An empty Tag marks an asynchronous push or an
// error that cannot be attributed to a client request; it renders as "*".
type Response struct {
	Tag  string
	Body ResponseBody
}

// ResponseBody is implemented by the bodies a response can carry.
type ResponseBody interface {
	respTokens() []string
}

// Success reports a completed request. Message is optional; empty means the
// reply carries no operand.
type Success struct {
	Message string
}

// Error reports a failed request with its wire code.
type Error struct {
	Code Code
}

// Recv is an asynchronous push delivering a message from another user.
type Recv struct {
	Sender  string
	Message string
}

func (s Success) respTokens() []string {
	if s.Message == "" {
		return []string{"Success"}
	}
	return []string{"Success", s.Message}
}

func (e Error) respTokens() []string {
	return []string{"Error", string(e.Code)}
}

func (r Recv) respTokens() []string {
	return []string{"Recv", r.Sender, r.Message}
}

// NewSuccess builds a tagged Success response. msg may be empty.
func NewSuccess(tag, msg string) Response {
	return Response{Tag: tag, Body: Success{Message: msg}}
}

// NewError builds a tagged Error response. An empty tag renders as "*".
func NewError(tag string, code Code) Response {
	return Response{Tag: tag, Body: Error{Code: code}}
}

// NewRecv builds the asynchronous push delivered to a message's receiver.
func NewRecv(sender, msg string) Response {
	return Response{Body: Recv{Sender: sender, Message: msg}}
}

// ParseResponse parses one wire line into a Response.
func ParseResponse(line string) (Response, error) {
	tokens, err := Tokenize(line)
	if err != nil {
		return Response{}, err
	}

	if len(tokens) < 2 {
		return Response{}, &ParseError{Input: line}
	}

	tag := tokens[0]
	if tag == "*" {
		tag = ""
	}

	kind, args := tokens[1], tokens[2:]

	var body ResponseBody
	switch kind {
	case "Success":
		switch len(args) {
		case 0:
			body = Success{}
		case 1:
			body = Success{Message: args[0]}
		default:
			return Response{}, &ParseError{Input: line}
		}
	case "Error":
		if len(args) != 1 {
			return Response{}, &ParseError{Input: line}
		}
		code, ok := ParseCode(args[0])
		if !ok {
			return Response{}, &ParseError{Input: line}
		}
		body = Error{Code: code}
	case "Recv":
		if len(args) != 2 {
			return Response{}, &ParseError{Input: line}
		}
		body = Recv{Sender: args[0], Message: args[1]}
	default:
		return Response{}, &ParseError{Input: line}
	}

	return Response{Tag: tag, Body: body}, nil
}

// Render emits the response as a wire line without the trailing LF.
func (r Response) Render() string {
	tag := r.Tag
	if tag == "" {
		tag = "*"
	}
	return Detokenize(append([]string{tag}, r.Body.respTokens()...))
}

// String implements fmt.Stringer for log output.
func (r Response) String() string { return r.Render() }

var _ fmt.Stringer = Response{}
