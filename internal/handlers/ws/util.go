package ws

import "encoding/json"

func Serialize(msg Message) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(SerializedMessage{
		Type:    msg.GetType(),
		Payload: payload,
	})
}

func Deserialize(jsonBytes []byte) (Message, error) {
	var wrapper SerializedMessage
	if err := json.Unmarshal(jsonBytes, &wrapper); err != nil {
		return nil, err
	}

	return DeserializeSerializedMessage(&wrapper)
}

func DeserializeSerializedMessage(wrapper *SerializedMessage) (Message, error) {
	msg, err := CreateMessage(wrapper.Type, typeRegistry)
	if err != nil {
		return nil, err
	}

	// Keepalive frames carry no payload at all; a missing payload is an
	// empty message of the declared type, not an error.
	if len(wrapper.Payload) > 0 {
		if err := json.Unmarshal(wrapper.Payload, msg); err != nil {
			return nil, err
		}
	}

	return msg, nil
}
