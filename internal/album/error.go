package album

import "errors"

var ErrAlbumNotFound = errors.New("album not found")
