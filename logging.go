package async

import "log/slog"

// Logger receives reports of errors this package cannot hand back to any
// caller -- chiefly a [Fork]ed strand's unhandled, non-cancel error, which
// has no awaiter left to deliver it to. It defaults to [slog.Default] and
// may be replaced wholesale by an embedding application.
var Logger = slog.Default()
