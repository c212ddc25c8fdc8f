package remoteapi_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/balancer-pools/internal/balancer"
	"github.com/angeloszaimis/balancer-pools/internal/remoteapi"
)

type recordedRequest struct {
	path string
	auth string
	body map[string]any
}

var _ = Describe("Client", func() {
	var (
		server   *httptest.Server
		client   *remoteapi.Client
		requests []recordedRequest
		status   int
		response string
	)

	BeforeEach(func() {
		requests = nil
		status = http.StatusOK
		response = "{}"

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := io.ReadAll(r.Body)
			Expect(err).NotTo(HaveOccurred())

			var body map[string]any
			Expect(json.Unmarshal(raw, &body)).To(Succeed())

			user, pass, _ := r.BasicAuth()
			requests = append(requests, recordedRequest{
				path: r.URL.Path,
				auth: user + ":" + pass,
				body: body,
			})

			w.WriteHeader(status)
			io.WriteString(w, response)
		}))

		client = remoteapi.NewClient(server.URL, "admin", "secret")
	})

	AfterEach(func() {
		server.Close()
	})

	It("should post the wrapped node payload with basic auth", func() {
		err := client.AddNodes([]string{"lb-web"}, [][]string{{"10.0.0.1:8000", "10.0.0.2:8000"}})
		Expect(err).NotTo(HaveOccurred())

		Expect(requests).To(HaveLen(1))
		Expect(requests[0].path).To(Equal("/addNodes"))
		Expect(requests[0].auth).To(Equal("admin:secret"))
		Expect(requests[0].body).To(Equal(map[string]any{
			"pools": []any{"lb-web"},
			"nodes": []any{[]any{"10.0.0.1:8000", "10.0.0.2:8000"}},
		}))
	})

	It("should decode the first node array from getNodes", func() {
		response = `{"nodes": [["10.0.0.1:8000", "10.0.0.2:8000"]]}`

		nodes, err := client.GetNodes([]string{"lb-web"})
		Expect(err).NotTo(HaveOccurred())
		Expect(nodes).To(Equal([]string{"10.0.0.1:8000", "10.0.0.2:8000"}))
		Expect(requests[0].body).NotTo(HaveKey("nodes"))
	})

	It("should map the unknown-pool fault to ErrPoolNotFound", func() {
		status = http.StatusNotFound
		response = `{"error": {"code": "unknown-pool", "message": "no pool lb-web"}}`

		_, err := client.GetNodes([]string{"lb-web"})
		Expect(err).To(MatchError(balancer.ErrPoolNotFound))
	})

	It("should report other failures as plain errors", func() {
		status = http.StatusInternalServerError
		response = `{"error": {"code": "internal", "message": "boom"}}`

		err := client.DeletePool([]string{"lb-web"})
		Expect(err).To(HaveOccurred())
		Expect(err).NotTo(MatchError(balancer.ErrPoolNotFound))
	})

	It("should hit one endpoint per operation", func() {
		Expect(client.DisableNodes([]string{"lb-web"}, [][]string{{"10.0.0.1:8000"}})).To(Succeed())
		Expect(client.RemoveNodes([]string{"lb-web"}, [][]string{{"10.0.0.1:8000"}})).To(Succeed())
		Expect(client.AddPool([]string{"lb-web"}, [][]string{{"10.0.0.1:8000"}})).To(Succeed())
		Expect(client.DeletePool([]string{"lb-web"})).To(Succeed())

		var paths []string
		for _, r := range requests {
			paths = append(paths, r.path)
		}
		Expect(paths).To(Equal([]string{"/disableNodes", "/removeNodes", "/addPool", "/deletePool"}))
	})
})
