package glue

import "errors"

var (
	// ErrDuplicateBinding means the browser entity already has a live value.
	ErrDuplicateBinding = errors.New("browser entity already bound")
	// ErrNodeNotFound means a node reference did not resolve to a live node.
	ErrNodeNotFound = errors.New("node not found")
	// ErrCreateFailed means the tree refused to create a node.
	ErrCreateFailed = errors.New("node creation failed")
	// ErrNoParent means a tab item was requested without a parent node.
	ErrNoParent = errors.New("no parent node")
	// ErrNoEntity means a browser window or tab was missing or had an invalid id.
	ErrNoEntity = errors.New("no browser entity")
	// ErrWrongKind means a node holds a value of the other kind.
	ErrWrongKind = errors.New("node holds a value of another kind")
	// ErrNotBound means no value is bound to the browser id.
	ErrNotBound = errors.New("browser id not bound")
	// ErrUnsupported means the tree lacks an optional capability.
	ErrUnsupported = errors.New("operation not supported by tree")
)
