package integration

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("HTTP API", Ordered, func() {
	var stack *testStack

	BeforeAll(func() {
		stack = newTestStack()
	})

	AfterAll(func() {
		stack.stop()
	})

	Describe("Health Check", func() {
		It("returns healthy status", func() {
			resp, err := stack.doRequest("GET", "/healthz", nil)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})
	})

	Describe("Alert Configurations API", func() {
		var configID string

		It("creates a threshold configuration", func() {
			payload := map[string]interface{}{
				"name":             "High CPU",
				"service_name":     "radius",
				"condition_type":   "threshold",
				"metric_type":      "cpu_usage",
				"threshold":        90,
				"comparator":       "gt",
				"severity":         "critical",
				"cooldown_seconds": 300,
			}

			resp, err := stack.doRequest("POST", "/v1/alert-configs", payload)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			var result map[string]interface{}
			Expect(parseResponse(resp, &result)).To(Succeed())
			Expect(result["success"]).To(BeTrue())

			data := dataField(result)
			Expect(data["id"]).NotTo(BeEmpty())
			Expect(data["enabled"]).To(BeTrue())
			configID = data["id"].(string)
		})

		It("rejects a configuration without a name", func() {
			payload := map[string]interface{}{
				"condition_type": "threshold",
				"metric_type":    "cpu_usage",
				"comparator":     "gt",
				"severity":       "critical",
			}

			resp, err := stack.doRequest("POST", "/v1/alert-configs", payload)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects a pattern configuration with a bad regex", func() {
			payload := map[string]interface{}{
				"name":           "Broken",
				"condition_type": "pattern",
				"pattern":        "([",
				"is_regex":       true,
				"severity":       "warning",
			}

			resp, err := stack.doRequest("POST", "/v1/alert-configs", payload)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("retrieves the configuration by id", func() {
			resp, err := stack.doRequest("GET", "/v1/alert-configs/"+configID, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var result map[string]interface{}
			Expect(parseResponse(resp, &result)).To(Succeed())
			Expect(dataField(result)["name"]).To(Equal("High CPU"))
		})

		It("lists configurations filtered by service", func() {
			resp, err := stack.doRequest("GET", "/v1/alert-configs?service_name=radius", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var result map[string]interface{}
			Expect(parseResponse(resp, &result)).To(Succeed())
			Expect(result["data"]).To(HaveLen(1))
		})

		It("updates only the provided fields", func() {
			payload := map[string]interface{}{
				"threshold": 95,
				"enabled":   false,
			}

			resp, err := stack.doRequest("PUT", "/v1/alert-configs/"+configID, payload)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var result map[string]interface{}
			Expect(parseResponse(resp, &result)).To(Succeed())
			data := dataField(result)
			Expect(data["threshold"]).To(BeEquivalentTo(95))
			Expect(data["enabled"]).To(BeFalse())
			Expect(data["name"]).To(Equal("High CPU"))
		})

		It("returns 404 for an unknown configuration", func() {
			resp, err := stack.doRequest("GET", "/v1/alert-configs/no-such-id", nil)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("deletes the configuration", func() {
			resp, err := stack.doRequest("DELETE", "/v1/alert-configs/"+configID, nil)
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))

			resp, err = stack.doRequest("GET", "/v1/alert-configs/"+configID, nil)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Describe("Notification Channels API", func() {
		var channelID string

		It("creates a webhook channel", func() {
			payload := map[string]interface{}{
				"name": "ops hook",
				"type": "webhook",
				"settings": map[string]interface{}{
					"url": "https://example.net/hook",
				},
			}

			resp, err := stack.doRequest("POST", "/v1/channels", payload)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			var result map[string]interface{}
			Expect(parseResponse(resp, &result)).To(Succeed())
			channelID = dataField(result)["id"].(string)
			Expect(channelID).NotTo(BeEmpty())
		})

		It("rejects an email channel without recipients", func() {
			payload := map[string]interface{}{
				"name":     "oncall",
				"type":     "email",
				"settings": map[string]interface{}{},
			}

			resp, err := stack.doRequest("POST", "/v1/channels", payload)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects an unknown channel type", func() {
			payload := map[string]interface{}{
				"name":     "pigeon post",
				"type":     "pigeon",
				"settings": map[string]interface{}{},
			}

			resp, err := stack.doRequest("POST", "/v1/channels", payload)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("updates the channel", func() {
			payload := map[string]interface{}{
				"enabled": false,
			}

			resp, err := stack.doRequest("PUT", "/v1/channels/"+channelID, payload)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var result map[string]interface{}
			Expect(parseResponse(resp, &result)).To(Succeed())
			Expect(dataField(result)["enabled"]).To(BeFalse())
		})

		It("lists and deletes channels", func() {
			resp, err := stack.doRequest("GET", "/v1/channels", nil)
			Expect(err).NotTo(HaveOccurred())
			var result map[string]interface{}
			Expect(parseResponse(resp, &result)).To(Succeed())
			Expect(result["data"]).To(HaveLen(1))

			resp, err = stack.doRequest("DELETE", "/v1/channels/"+channelID, nil)
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
		})
	})

	Describe("Event ingestion API", func() {
		It("accepts a valid metric event", func() {
			payload := map[string]interface{}{
				"service_name": "radius",
				"metric_type":  "cpu_usage",
				"value":        42.5,
			}

			resp, err := stack.doRequest("POST", "/v1/events/metrics", payload)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusAccepted))

			var result map[string]interface{}
			Expect(parseResponse(resp, &result)).To(Succeed())
			Expect(dataField(result)["status"]).To(Equal("queued"))
		})

		It("rejects a metric event without a service name", func() {
			payload := map[string]interface{}{
				"metric_type": "cpu_usage",
				"value":       42.5,
			}

			resp, err := stack.doRequest("POST", "/v1/events/metrics", payload)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects a log event without a message", func() {
			payload := map[string]interface{}{
				"service_name": "radius",
				"level":        "error",
			}

			resp, err := stack.doRequest("POST", "/v1/events/logs", payload)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})
})
