package integration

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"netpulse/internal/notification"
)

var _ = Describe("Alert Lifecycle", Ordered, func() {
	var (
		stack      *testStack
		hookServer *httptest.Server
		hookCount  atomic.Int64
		configID   string
		alertID    string
	)

	BeforeAll(func() {
		hookServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hookCount.Add(1)
			w.WriteHeader(http.StatusOK)
		}))

		stack = newTestStack(notification.NewWebhookSender(hookServer.Client()))

		// One webhook channel and one threshold configuration bound to it.
		resp, err := stack.doRequest("POST", "/v1/channels", map[string]interface{}{
			"name": "lifecycle hook",
			"type": "webhook",
			"settings": map[string]interface{}{
				"url": hookServer.URL,
			},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		var result map[string]interface{}
		Expect(parseResponse(resp, &result)).To(Succeed())
		channelID := dataField(result)["id"].(string)

		resp, err = stack.doRequest("POST", "/v1/alert-configs", map[string]interface{}{
			"name":           "High CPU",
			"service_name":   "radius",
			"condition_type": "threshold",
			"metric_type":    "cpu_usage",
			"threshold":      90,
			"comparator":     "gt",
			"severity":       "critical",
			"channel_ids":    []string{channelID},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		Expect(parseResponse(resp, &result)).To(Succeed())
		configID = dataField(result)["id"].(string)
	})

	AfterAll(func() {
		stack.stop()
		hookServer.Close()
	})

	listAlerts := func() []interface{} {
		resp, err := stack.doRequest("GET", "/v1/alerts?config_id="+configID, nil)
		Expect(err).NotTo(HaveOccurred())
		var result map[string]interface{}
		Expect(parseResponse(resp, &result)).To(Succeed())
		alerts, _ := result["data"].([]interface{})
		return alerts
	}

	It("raises an alert for a breaching metric", func() {
		resp, err := stack.doRequest("POST", "/v1/events/metrics", map[string]interface{}{
			"service_name": "radius",
			"metric_type":  "cpu_usage",
			"value":        97.5,
		})
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusAccepted))

		Eventually(listAlerts, 5*time.Second, 50*time.Millisecond).Should(HaveLen(1))

		alert := listAlerts()[0].(map[string]interface{})
		Expect(alert["status"]).To(Equal("active"))
		Expect(alert["severity"]).To(Equal("critical"))
		Expect(alert["service_name"]).To(Equal("radius"))
		Expect(alert["triggered_value"]).To(BeEquivalentTo(97.5))
		alertID = alert["id"].(string)
	})

	It("delivers the notification to the webhook", func() {
		Eventually(func() int64 { return hookCount.Load() }, 5*time.Second, 50*time.Millisecond).
			Should(BeEquivalentTo(1))

		Eventually(func() interface{} {
			resp, err := stack.doRequest("GET", "/v1/alerts/"+alertID, nil)
			Expect(err).NotTo(HaveOccurred())
			var result map[string]interface{}
			Expect(parseResponse(resp, &result)).To(Succeed())
			return dataField(result)["notification_sent"]
		}, 5*time.Second, 50*time.Millisecond).Should(BeTrue())
	})

	It("suppresses a second trigger while the alert is open", func() {
		resp, err := stack.doRequest("POST", "/v1/events/metrics", map[string]interface{}{
			"service_name": "radius",
			"metric_type":  "cpu_usage",
			"value":        99,
		})
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()

		Consistently(listAlerts, time.Second, 100*time.Millisecond).Should(HaveLen(1))
	})

	It("acknowledges the alert", func() {
		resp, err := stack.doRequest("POST", "/v1/alerts/"+alertID+"/acknowledge", map[string]interface{}{
			"actor": "alice",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		var result map[string]interface{}
		Expect(parseResponse(resp, &result)).To(Succeed())
		data := dataField(result)
		Expect(data["status"]).To(Equal("acknowledged"))
		Expect(data["acknowledged_by"]).To(Equal("alice"))
	})

	It("requires an actor for acknowledge", func() {
		resp, err := stack.doRequest("POST", "/v1/alerts/"+alertID+"/acknowledge", map[string]interface{}{})
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
	})

	It("resolves the alert", func() {
		resp, err := stack.doRequest("POST", "/v1/alerts/"+alertID+"/resolve", map[string]interface{}{
			"actor":   "alice",
			"comment": "load balancer drained",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		var result map[string]interface{}
		Expect(parseResponse(resp, &result)).To(Succeed())
		data := dataField(result)
		Expect(data["status"]).To(Equal("resolved"))
		Expect(data["resolved_by"]).To(Equal("alice"))
		Expect(data["comment"]).To(Equal("load balancer drained"))
	})

	It("refuses to acknowledge a resolved alert", func() {
		resp, err := stack.doRequest("POST", "/v1/alerts/"+alertID+"/acknowledge", map[string]interface{}{
			"actor": "bob",
		})
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		Expect(resp.StatusCode).To(Equal(http.StatusConflict))
	})

	It("raises a fresh alert after resolution", func() {
		resp, err := stack.doRequest("POST", "/v1/events/metrics", map[string]interface{}{
			"service_name": "radius",
			"metric_type":  "cpu_usage",
			"value":        98,
		})
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()

		Eventually(listAlerts, 5*time.Second, 50*time.Millisecond).Should(HaveLen(2))

		active := 0
		for _, raw := range listAlerts() {
			if raw.(map[string]interface{})["status"] == "active" {
				active++
			}
		}
		Expect(active).To(Equal(1))
	})

	It("raises a pattern alert from a log event", func() {
		resp, err := stack.doRequest("POST", "/v1/alert-configs", map[string]interface{}{
			"name":           "Timeouts",
			"service_name":   "dhcp",
			"condition_type": "pattern",
			"log_level":      "error",
			"pattern":        "timed out",
			"severity":       "warning",
		})
		Expect(err).NotTo(HaveOccurred())
		var result map[string]interface{}
		Expect(parseResponse(resp, &result)).To(Succeed())
		patternConfigID := dataField(result)["id"].(string)

		resp, err = stack.doRequest("POST", "/v1/events/logs", map[string]interface{}{
			"service_name": "dhcp",
			"level":        "error",
			"message":      "lease renewal timed out",
		})
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusAccepted))

		listPattern := func() []interface{} {
			resp, err := stack.doRequest("GET", "/v1/alerts?config_id="+patternConfigID, nil)
			Expect(err).NotTo(HaveOccurred())
			var result map[string]interface{}
			Expect(parseResponse(resp, &result)).To(Succeed())
			alerts, _ := result["data"].([]interface{})
			return alerts
		}

		Eventually(listPattern, 5*time.Second, 50*time.Millisecond).Should(HaveLen(1))
		alert := listPattern()[0].(map[string]interface{})
		Expect(alert["matched_pattern"]).To(Equal("timed out"))
		Expect(alert["severity"]).To(Equal("warning"))
	})
})
