package protocol

// Hand-authored Marshaler/Unmarshaler implementations in the style `msgp
// -io=false -tests=false` would generate for types carrying a
// //msgp:tuple directive: each struct marshals as a fixed-length array of
// its fields in declaration order, rather than a map keyed by field name.
// Regenerating via `go generate` was not available in this environment,
// so these are written directly against the tinylib/msgp support package.

import "github.com/tinylib/msgp/msgp"

func (a Action) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendArrayHeader(b, 2)
	b = msgp.AppendUint8(b, uint8(a.Kind))
	b = msgp.AppendUint32(b, a.Amount)
	return b, nil
}

func (a *Action) UnmarshalMsg(b []byte) ([]byte, error) {
	_, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return b, err
	}
	kind, b, err := msgp.ReadUint8Bytes(b)
	if err != nil {
		return b, err
	}
	amount, b, err := msgp.ReadUint32Bytes(b)
	if err != nil {
		return b, err
	}
	a.Kind = ActionKind(kind)
	a.Amount = amount
	return b, nil
}

func (m ClientMessage) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendArrayHeader(b, 4)
	b = msgp.AppendString(b, m.Username)
	b = msgp.AppendUint8(b, uint8(m.Kind))
	b = msgp.AppendBool(b, m.Play)
	return m.Action.MarshalMsg(b)
}

func (m *ClientMessage) UnmarshalMsg(b []byte) ([]byte, error) {
	_, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return b, err
	}
	m.Username, b, err = msgp.ReadStringBytes(b)
	if err != nil {
		return b, err
	}
	kind, b, err := msgp.ReadUint8Bytes(b)
	if err != nil {
		return b, err
	}
	m.Kind = ClientCommandKind(kind)
	m.Play, b, err = msgp.ReadBoolBytes(b)
	if err != nil {
		return b, err
	}
	return m.Action.UnmarshalMsg(b)
}

func (c CardWire) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendArrayHeader(b, 2)
	b = msgp.AppendUint8(b, c.Suit)
	b = msgp.AppendUint8(b, c.Value)
	return b, nil
}

func (c *CardWire) UnmarshalMsg(b []byte) ([]byte, error) {
	_, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return b, err
	}
	c.Suit, b, err = msgp.ReadUint8Bytes(b)
	if err != nil {
		return b, err
	}
	c.Value, b, err = msgp.ReadUint8Bytes(b)
	return b, err
}

func marshalCards(b []byte, cards []CardWire) []byte {
	b = msgp.AppendArrayHeader(b, uint32(len(cards)))
	for _, c := range cards {
		b, _ = c.MarshalMsg(b)
	}
	return b
}

func unmarshalCards(b []byte) ([]CardWire, []byte, error) {
	sz, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return nil, b, err
	}
	cards := make([]CardWire, sz)
	for i := range cards {
		b, err = cards[i].UnmarshalMsg(b)
		if err != nil {
			return nil, b, err
		}
	}
	return cards, b, nil
}

func marshalStrings(b []byte, ss []string) []byte {
	b = msgp.AppendArrayHeader(b, uint32(len(ss)))
	for _, s := range ss {
		b = msgp.AppendString(b, s)
	}
	return b
}

func unmarshalStrings(b []byte) ([]string, []byte, error) {
	sz, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return nil, b, err
	}
	ss := make([]string, sz)
	for i := range ss {
		ss[i], b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return nil, b, err
		}
	}
	return ss, b, nil
}

func (p PlayerViewWire) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendArrayHeader(b, 5)
	b = msgp.AppendString(b, p.Name)
	b = msgp.AppendUint32(b, p.Money)
	b = msgp.AppendUint8(b, p.State)
	b = msgp.AppendInt32(b, p.Seat)
	b = marshalCards(b, p.Hole)
	return b, nil
}

func (p *PlayerViewWire) UnmarshalMsg(b []byte) ([]byte, error) {
	_, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return b, err
	}
	p.Name, b, err = msgp.ReadStringBytes(b)
	if err != nil {
		return b, err
	}
	p.Money, b, err = msgp.ReadUint32Bytes(b)
	if err != nil {
		return b, err
	}
	p.State, b, err = msgp.ReadUint8Bytes(b)
	if err != nil {
		return b, err
	}
	p.Seat, b, err = msgp.ReadInt32Bytes(b)
	if err != nil {
		return b, err
	}
	p.Hole, b, err = unmarshalCards(b)
	return b, err
}

func (v GameViewWire) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendArrayHeader(b, 11)
	b = marshalCards(b, v.Board)
	b = msgp.AppendInt64(b, v.PotSize)
	b = msgp.AppendArrayHeader(b, uint32(len(v.Players)))
	for _, p := range v.Players {
		b, _ = p.MarshalMsg(b)
	}
	b = marshalStrings(b, v.Spectators)
	b = marshalStrings(b, v.Waitlist)
	b = msgp.AppendInt32(b, v.SmallBlindIdx)
	b = msgp.AppendInt32(b, v.BigBlindIdx)
	b = msgp.AppendBool(b, v.HasNext)
	b = msgp.AppendInt32(b, v.NextActionIdx)
	b = msgp.AppendUint32(b, v.SmallBlind)
	b = msgp.AppendUint32(b, v.BigBlind)
	return b, nil
}

func (v *GameViewWire) UnmarshalMsg(b []byte) ([]byte, error) {
	_, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return b, err
	}
	v.Board, b, err = unmarshalCards(b)
	if err != nil {
		return b, err
	}
	v.PotSize, b, err = msgp.ReadInt64Bytes(b)
	if err != nil {
		return b, err
	}
	sz, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return b, err
	}
	v.Players = make([]PlayerViewWire, sz)
	for i := range v.Players {
		b, err = v.Players[i].UnmarshalMsg(b)
		if err != nil {
			return b, err
		}
	}
	v.Spectators, b, err = unmarshalStrings(b)
	if err != nil {
		return b, err
	}
	v.Waitlist, b, err = unmarshalStrings(b)
	if err != nil {
		return b, err
	}
	v.SmallBlindIdx, b, err = msgp.ReadInt32Bytes(b)
	if err != nil {
		return b, err
	}
	v.BigBlindIdx, b, err = msgp.ReadInt32Bytes(b)
	if err != nil {
		return b, err
	}
	v.HasNext, b, err = msgp.ReadBoolBytes(b)
	if err != nil {
		return b, err
	}
	v.NextActionIdx, b, err = msgp.ReadInt32Bytes(b)
	if err != nil {
		return b, err
	}
	v.SmallBlind, b, err = msgp.ReadUint32Bytes(b)
	if err != nil {
		return b, err
	}
	v.BigBlind, b, err = msgp.ReadUint32Bytes(b)
	return b, err
}

func (m ServerMessage) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendArrayHeader(b, 8)
	b = msgp.AppendUint8(b, uint8(m.Kind))
	b, _ = m.Ack.MarshalMsg(b)
	b = msgp.AppendUint8(b, uint8(m.ClientError))
	b, _ = m.View.MarshalMsg(b)
	b = msgp.AppendString(b, m.Status)
	b = msgp.AppendArrayHeader(b, uint32(len(m.LegalActions)))
	for _, a := range m.LegalActions {
		b = msgp.AppendUint8(b, uint8(a))
	}
	b = msgp.AppendUint8(b, uint8(m.UserError))
	b = msgp.AppendString(b, m.UserErrorValue)
	return b, nil
}

func (m *ServerMessage) UnmarshalMsg(b []byte) ([]byte, error) {
	_, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return b, err
	}
	kind, b, err := msgp.ReadUint8Bytes(b)
	if err != nil {
		return b, err
	}
	m.Kind = ServerCommandKind(kind)
	b, err = m.Ack.UnmarshalMsg(b)
	if err != nil {
		return b, err
	}
	clientErr, b, err := msgp.ReadUint8Bytes(b)
	if err != nil {
		return b, err
	}
	m.ClientError = ClientErrorKind(clientErr)
	b, err = m.View.UnmarshalMsg(b)
	if err != nil {
		return b, err
	}
	m.Status, b, err = msgp.ReadStringBytes(b)
	if err != nil {
		return b, err
	}
	sz, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return b, err
	}
	m.LegalActions = make([]ActionKind, sz)
	for i := range m.LegalActions {
		v, rest, err := msgp.ReadUint8Bytes(b)
		if err != nil {
			return rest, err
		}
		m.LegalActions[i] = ActionKind(v)
		b = rest
	}
	userErr, b, err := msgp.ReadUint8Bytes(b)
	if err != nil {
		return b, err
	}
	m.UserError = UserErrorKind(userErr)
	m.UserErrorValue, b, err = msgp.ReadStringBytes(b)
	return b, err
}
