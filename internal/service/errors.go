package service

import "errors"

var ErrDocumentNotFound = errors.New("document not found")
