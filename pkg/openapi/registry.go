package openapi

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/swaggo/swag"
)

var (
	// ErrDocumentNotFound is returned when no document exists for a group.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrDuplicateGroup is returned when a group is registered twice.
	ErrDuplicateGroup = errors.New("document group already registered")

	// ErrRegistryFrozen is returned when registering after Freeze.
	ErrRegistryFrozen = errors.New("document registry is frozen")
)

// Group is one entry of the version list shown by documentation UIs.
type Group struct {
	Name       string
	Deprecated bool
}

// Registry holds one document per group name. It is written while documents
// are built and read-only once frozen; reads take no locks, so Register must
// not run concurrently with anything else.
type Registry struct {
	log    logrus.FieldLogger
	docs   map[string]*Document
	order  []string
	frozen atomic.Bool
}

// NewRegistry creates an empty registry in the building phase.
func NewRegistry(log logrus.FieldLogger) *Registry {
	return &Registry{
		log:  log.WithField("component", "openapi_registry"),
		docs: make(map[string]*Document, 4),
	}
}

// Register stores doc under groupName. A duplicate is logged and rejected,
// keeping the first document.
func (r *Registry) Register(groupName string, doc *Document) error {
	if r.frozen.Load() {
		return ErrRegistryFrozen
	}

	if _, exists := r.docs[groupName]; exists {
		r.log.WithField("group", groupName).Warn("Ignoring duplicate OpenAPI document")

		return fmt.Errorf("%w: %s", ErrDuplicateGroup, groupName)
	}

	r.docs[groupName] = doc
	r.order = append(r.order, groupName)

	return nil
}

// Freeze ends the building phase.
func (r *Registry) Freeze() {
	r.frozen.Store(true)
}

// Frozen reports whether the registry is serving.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

// Get returns the document for groupName.
func (r *Registry) Get(groupName string) (*Document, error) {
	doc, ok := r.docs[groupName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, groupName)
	}

	return doc, nil
}

// Groups lists the registered groups in registration order.
func (r *Registry) Groups() []Group {
	out := make([]Group, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, Group{Name: name, Deprecated: r.docs[name].Deprecated})
	}

	return out
}

// Len returns the number of registered documents.
func (r *Registry) Len() int {
	return len(r.docs)
}

// published holds the swag instances created by Publish, by instance name.
var (
	publishedMu sync.Mutex
	published   = make(map[string]*publishedDoc)
)

// publishedDoc is the swag instance behind one name. swag refuses to register
// a name twice, so publishing again swaps the document it reads.
type publishedDoc struct {
	doc atomic.Pointer[Document]
}

func (p *publishedDoc) ReadDoc() string {
	return p.doc.Load().ReadDoc()
}

// Publish makes every document readable through swag as prefix+group and
// returns the instance names in registration order. Publishing a name again
// replaces its document. Names registered with swag by other code are left
// alone and not returned.
func (r *Registry) Publish(prefix string) []string {
	publishedMu.Lock()
	defer publishedMu.Unlock()

	instances := make([]string, 0, len(r.order))

	for _, name := range r.order {
		instance := prefix + name

		p, ok := published[instance]
		if !ok {
			if swag.GetSwagger(instance) != nil {
				r.log.WithField("instance", instance).Warn("Swag instance registered elsewhere, not publishing")

				continue
			}

			p = &publishedDoc{}
			swag.Register(instance, p)
			published[instance] = p
		}

		p.doc.Store(r.docs[name])
		instances = append(instances, instance)
	}

	return instances
}
