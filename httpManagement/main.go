package httpManagement

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/alaingilbert/drbg"
)

// GetMux returns a handler exposing the hierarchy state for operators:
// lifecycle status and reseed bookkeeping only, never any secret working
// state. POST forces a master reseed.
func GetMux(h *drbg.Hierarchy) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", getIndexHandler(h))
	mux.HandleFunc("POST /{$}", postIndexHandler(h))
	return mux
}

var roles = []string{"master", "public", "private"}

func getIndexHandler(h *drbg.Hierarchy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var b bytes.Buffer
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		b.WriteString(`
<style>
	html {
		background-color: #222;
		color: #eee;
		font-family: -apple-system,BlinkMacSystemFont,"Segoe UI",Roboto,"Helvetica Neue",Arial,sans-serif,"Apple Color Emoji","Segoe UI Emoji","Segoe UI Symbol";
	}
	table td {
		padding: 0 5px;
	}
</style>`)
		b.WriteString(`
Current time: ` + time.Now().Format(time.DateTime) + `<br />
<table>
	<thead>
		<th>Role</th>
		<th>ID</th>
		<th>Type</th>
		<th>Status</th>
		<th>Strength</th>
		<th>Generate calls since reseed</th>
		<th>Last reseed</th>
	</thead>
	<tbody>`)
		for i, d := range h.Instances() {
			b.WriteString(`
		<tr>
			<td>` + roles[i] + `</td>
			<td>` + d.ID().String() + `</td>
			<td>` + d.Type().String() + `</td>
			<td>` + d.Status().String() + `</td>
			<td>` + strconv.Itoa(d.Strength()) + `</td>
			<td>` + strconv.FormatUint(d.ReseedCounter(), 10) + `</td>
			<td>` + d.LastReseed().Format(time.DateTime) + `</td>
		</tr>`)
		}
		b.WriteString(`
	</tbody>
</table>
<form method="post"><button>Reseed master</button></form>`)
		_, _ = w.Write(b.Bytes())
	}
}

func postIndexHandler(h *drbg.Hierarchy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.Master().Reseed(nil); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
