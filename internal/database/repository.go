package database

// Repository provides data access methods. It is the sole implementation of
// every engine package's Repository seam (pkg/assimilation, pkg/projection,
// pkg/liveprojection, pkg/forecast) plus internal/scheduler.BatchSource and
// internal/dispatch.TaskQueue. No engine package imports GORM; outside this
// package only internal/api imports it, to recognise gorm.ErrRecordNotFound.
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}
