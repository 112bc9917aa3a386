package unit

// init registers the five AosUnit message types with the default registry.
// This enables Decode to recreate typed payloads from the messageType
// discriminator.
func init() {
	registrations := []*Registration{
		{
			MessageType: MessageTypeDesiredStatus,
			Description: "Cloud-issued desired configuration snapshot the unit should converge to",
			Factory:     func() Payload { return &DesiredStatus{} },
			Example: map[string]any{
				"messageType": MessageTypeDesiredStatus,
				"instances": []any{
					map[string]any{
						"serviceId":    "service1",
						"subjectId":    "subject1",
						"priority":     100,
						"numInstances": 2,
					},
				},
				"nodes": []any{
					map[string]any{"nodeId": "node0", "state": "active"},
				},
			},
		},
		{
			MessageType: MessageTypeNewState,
			Description: "Unit report of a service instance state change",
			Factory:     func() Payload { return &NewState{} },
			Example: map[string]any{
				"messageType":   MessageTypeNewState,
				"serviceId":     "service1",
				"subjectId":     "subject1",
				"instance":      0,
				"stateChecksum": "4d5e6f",
				"state":         `{"key": "value"}`,
			},
		},
		{
			MessageType: MessageTypeUpdateState,
			Description: "Cloud push of a new service instance state",
			Factory:     func() Payload { return &UpdateState{} },
			Example: map[string]any{
				"messageType":   MessageTypeUpdateState,
				"serviceId":     "service1",
				"subjectId":     "subject1",
				"instance":      0,
				"stateChecksum": "4d5e6f",
				"state":         `{"key": "value"}`,
			},
		},
		{
			MessageType: MessageTypeStateAcceptance,
			Description: "Cloud verdict on a previously reported state change",
			Factory:     func() Payload { return &StateAcceptance{} },
			Example: map[string]any{
				"messageType": MessageTypeStateAcceptance,
				"serviceId":   "service1",
				"subjectId":   "subject1",
				"instance":    0,
				"checksum":    "4d5e6f",
				"result":      "accepted",
				"reason":      "",
			},
		},
		{
			MessageType: MessageTypeStateRequest,
			Description: "Unit request for a service instance state",
			Factory:     func() Payload { return &StateRequest{} },
			Example: map[string]any{
				"messageType": MessageTypeStateRequest,
				"serviceId":   "service1",
				"subjectId":   "subject1",
				"instance":    0,
				"default":     false,
			},
		},
	}

	for _, registration := range registrations {
		if err := defaultRegistry.Register(registration); err != nil {
			panic("failed to register message type " + registration.MessageType + ": " + err.Error())
		}
	}
}
