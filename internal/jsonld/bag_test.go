package jsonld_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Senticor-ai/project-sub002/internal/jsonld"
)

func TestBagKeepsOrderAndReplacesInPlace(t *testing.T) {
	var bag jsonld.Bag
	assert.Nil(t, bag.Items())

	bag.Set(jsonld.PropBucket, "inbox")
	bag.Set(jsonld.PropIsFocused, true)
	bag.Set(jsonld.PropBucket, "next")
	bag.Null(jsonld.PropDueDate)

	items := bag.Items()
	require.Len(t, items, 3)
	assert.Equal(t, jsonld.PropBucket, items[0].PropertyID)
	assert.JSONEq(t, `"next"`, string(items[0].Value))
	assert.Equal(t, jsonld.PropIsFocused, items[1].PropertyID)
	assert.Equal(t, "null", string(items[2].Value))
	for _, pv := range items {
		assert.Equal(t, jsonld.TypePropertyValue, pv.Type)
	}
	require.NoError(t, bag.Err())
}

func TestBagSetJSONString(t *testing.T) {
	var bag jsonld.Bag
	bag.SetJSONString(jsonld.PropOrgRef, map[string]string{"id": "org-1"})
	raw, ok := jsonld.GetAdditionalProperty(bag.Items(), jsonld.PropOrgRef)
	require.True(t, ok)
	var s string
	require.NoError(t, json.Unmarshal(raw, &s))
	assert.Equal(t, `{"id":"org-1"}`, s)
}

func TestBagRecordsEncodeError(t *testing.T) {
	var bag jsonld.Bag
	bag.Set(jsonld.PropPorts, make(chan int))
	assert.Error(t, bag.Err())
	assert.Zero(t, bag.Len())
}

func TestGetAdditionalPropertyFirstMatch(t *testing.T) {
	list := []jsonld.PropertyValue{
		{Type: jsonld.TypePropertyValue, PropertyID: "app:x", Value: json.RawMessage(`1`)},
		{Type: jsonld.TypePropertyValue, PropertyID: "app:x", Value: json.RawMessage(`2`)},
	}
	raw, ok := jsonld.GetAdditionalProperty(list, "app:x")
	require.True(t, ok)
	assert.Equal(t, "1", string(raw))

	_, ok = jsonld.GetAdditionalProperty(list, "app:y")
	assert.False(t, ok)
	_, ok = jsonld.GetAdditionalProperty(nil, "app:x")
	assert.False(t, ok)
}

func TestPropertyValueWireShape(t *testing.T) {
	var bag jsonld.Bag
	bag.Set(jsonld.PropRawCapture, "Buy milk")
	data, err := json.Marshal(bag.Items()[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"@type":"PropertyValue","propertyID":"app:rawCapture","value":"Buy milk"}`, string(data))
}
