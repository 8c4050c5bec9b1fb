package release

import (
	"github.com/baileyrd/naner-sub002/internal/catalog"
)

func (r *Resolver) resolveStatic(src *catalog.StaticRelease) (Resolved, error) {
	return Resolved{
		Version:  src.Version,
		URL:      src.URL,
		FileName: src.FileName,
	}, nil
}
