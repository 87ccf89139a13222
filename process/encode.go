package process

import (
	"errors"
	"fmt"
	"math"
	"strings"

	goerrors "github.com/kbukum/hostproc/errors"
)

// ErrInvalidEncoding is the cause of every encoding error: the value contains
// a NUL byte, which the host would treat as a terminator.
var ErrInvalidEncoding = errors.New("process: value contains a NUL byte")

// checkText rejects text that cannot cross the boundary intact.
func checkText(field, s string) *goerrors.AppError {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return goerrors.InvalidEncoding(field, fmt.Sprintf("NUL byte at offset %d", i)).
			WithCause(ErrInvalidEncoding).
			WithDetail("offset", i)
	}
	return nil
}

// checkLength rejects buffers whose length does not fit the host's u32 length.
func checkLength(field string, n int) error {
	if uint64(n) > math.MaxUint32 {
		return goerrors.InvalidInput(field, fmt.Sprintf("%d bytes exceeds the host limit of %d", n, uint32(math.MaxUint32)))
	}
	return nil
}

// splitEnviron parses KEY=VALUE entries the way os.Environ reports them.
// Entries without '=' are skipped; a leading '=' belongs to the key
// (Windows drive variables such as "=C:=C:\").
func splitEnviron(environ []string, yield func(key, value string)) {
	for _, kv := range environ {
		if kv == "" {
			continue
		}
		i := strings.IndexByte(kv[1:], '=')
		if i < 0 {
			continue
		}
		i++
		yield(kv[:i], kv[i+1:])
	}
}
