package domain

import "time"

// CreateConfigRequest is the API payload for creating an alert
// configuration. Durations are given in seconds.
type CreateConfigRequest struct {
	Name             string        `json:"name"`
	ServiceName      string        `json:"service_name,omitempty"`
	ConditionType    ConditionType `json:"condition_type"`
	MetricType       string        `json:"metric_type,omitempty"`
	Threshold        float64       `json:"threshold,omitempty"`
	Comparator       Comparator    `json:"comparator,omitempty"`
	LogLevel         string        `json:"log_level,omitempty"`
	Pattern          string        `json:"pattern,omitempty"`
	IsRegex          bool          `json:"is_regex,omitempty"`
	Severity         Severity      `json:"severity"`
	Enabled          *bool         `json:"enabled,omitempty"`
	CooldownSeconds  int64         `json:"cooldown_seconds,omitempty"`
	AutoResolveAfter int64         `json:"auto_resolve_seconds,omitempty"`
	ChannelIDs       []string      `json:"channel_ids,omitempty"`
}

// ToConfiguration builds an AlertConfiguration with the given ID.
// Enabled defaults to true when omitted.
func (r *CreateConfigRequest) ToConfiguration(id string) *AlertConfiguration {
	now := time.Now().UTC()
	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}
	return &AlertConfiguration{
		ID:               id,
		Name:             r.Name,
		ServiceName:      r.ServiceName,
		ConditionType:    r.ConditionType,
		MetricType:       r.MetricType,
		Threshold:        r.Threshold,
		Comparator:       r.Comparator,
		LogLevel:         r.LogLevel,
		Pattern:          r.Pattern,
		IsRegex:          r.IsRegex,
		Severity:         r.Severity,
		Enabled:          enabled,
		Cooldown:         time.Duration(r.CooldownSeconds) * time.Second,
		AutoResolveAfter: time.Duration(r.AutoResolveAfter) * time.Second,
		ChannelIDs:       r.ChannelIDs,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// UpdateConfigRequest is the API payload for updating a configuration.
// Nil fields are left unchanged.
type UpdateConfigRequest struct {
	Name             *string        `json:"name,omitempty"`
	ServiceName      *string        `json:"service_name,omitempty"`
	ConditionType    *ConditionType `json:"condition_type,omitempty"`
	MetricType       *string        `json:"metric_type,omitempty"`
	Threshold        *float64       `json:"threshold,omitempty"`
	Comparator       *Comparator    `json:"comparator,omitempty"`
	LogLevel         *string        `json:"log_level,omitempty"`
	Pattern          *string        `json:"pattern,omitempty"`
	IsRegex          *bool          `json:"is_regex,omitempty"`
	Severity         *Severity      `json:"severity,omitempty"`
	Enabled          *bool          `json:"enabled,omitempty"`
	CooldownSeconds  *int64         `json:"cooldown_seconds,omitempty"`
	AutoResolveAfter *int64         `json:"auto_resolve_seconds,omitempty"`
	ChannelIDs       []string       `json:"channel_ids,omitempty"`
}

// ApplyTo copies the set fields onto the configuration.
func (r *UpdateConfigRequest) ApplyTo(cfg *AlertConfiguration) {
	if r.Name != nil {
		cfg.Name = *r.Name
	}
	if r.ServiceName != nil {
		cfg.ServiceName = *r.ServiceName
	}
	if r.ConditionType != nil {
		cfg.ConditionType = *r.ConditionType
	}
	if r.MetricType != nil {
		cfg.MetricType = *r.MetricType
	}
	if r.Threshold != nil {
		cfg.Threshold = *r.Threshold
	}
	if r.Comparator != nil {
		cfg.Comparator = *r.Comparator
	}
	if r.LogLevel != nil {
		cfg.LogLevel = *r.LogLevel
	}
	if r.IsRegex != nil {
		cfg.IsRegex = *r.IsRegex
	}
	if r.Pattern != nil {
		cfg.Pattern = *r.Pattern
	}
	if r.Severity != nil {
		cfg.Severity = *r.Severity
	}
	if r.Enabled != nil {
		cfg.Enabled = *r.Enabled
	}
	if r.CooldownSeconds != nil {
		cfg.Cooldown = time.Duration(*r.CooldownSeconds) * time.Second
	}
	if r.AutoResolveAfter != nil {
		cfg.AutoResolveAfter = time.Duration(*r.AutoResolveAfter) * time.Second
	}
	if r.ChannelIDs != nil {
		cfg.ChannelIDs = r.ChannelIDs
	}
	cfg.UpdatedAt = time.Now().UTC()
}

// CreateChannelRequest is the API payload for creating a notification
// channel.
type CreateChannelRequest struct {
	Name     string          `json:"name"`
	Type     ChannelType     `json:"type"`
	Enabled  *bool           `json:"enabled,omitempty"`
	Settings ChannelSettings `json:"settings"`
}

// ToChannel builds a NotificationChannel with the given ID. Enabled
// defaults to true when omitted.
func (r *CreateChannelRequest) ToChannel(id string) *NotificationChannel {
	now := time.Now().UTC()
	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}
	return &NotificationChannel{
		ID:        id,
		Name:      r.Name,
		Type:      r.Type,
		Enabled:   enabled,
		Settings:  r.Settings,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UpdateChannelRequest is the API payload for updating a channel. Nil
// fields are left unchanged.
type UpdateChannelRequest struct {
	Name     *string          `json:"name,omitempty"`
	Type     *ChannelType     `json:"type,omitempty"`
	Enabled  *bool            `json:"enabled,omitempty"`
	Settings *ChannelSettings `json:"settings,omitempty"`
}

// ApplyTo copies the set fields onto the channel.
func (r *UpdateChannelRequest) ApplyTo(ch *NotificationChannel) {
	if r.Name != nil {
		ch.Name = *r.Name
	}
	if r.Type != nil {
		ch.Type = *r.Type
	}
	if r.Enabled != nil {
		ch.Enabled = *r.Enabled
	}
	if r.Settings != nil {
		ch.Settings = *r.Settings
	}
	ch.UpdatedAt = time.Now().UTC()
}

// AlertActionRequest is the API payload for acknowledge and resolve
// operations.
type AlertActionRequest struct {
	Actor   string `json:"actor"`
	Comment string `json:"comment,omitempty"`
}
