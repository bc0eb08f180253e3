package services

import "errors"

// ErrDatasetEmpty signals a replacement table with zero rows, which
// would leave the dashboard with nothing to render.
var ErrDatasetEmpty = errors.New("dataset has no rows")
