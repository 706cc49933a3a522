package catalog

const sampleYAML = `
routes:
  - id: north
    busName: N1
    start: Depot
    end: Market
    stops:
      - {name: Depot, lat: 0, lon: 0}
      - {name: School, lat: 0, lon: 0.01}
      - {name: Market, lat: 0, lon: 0.02}
  - id: east
    start: Plaza
    end: Harbour
    stops:
      - {name: Plaza, lat: 0, lon: 0.021}
      - {name: Harbour}
transfers:
  - {name: Market Plaza, transfer1: Market, transfer2: Plaza}
`

const sampleJSON = `{
  "routes": [
    {"id": "north", "start": "Depot", "end": "Market",
     "stops": [{"name": "Depot", "lat": 0, "lon": 0}, {"name": "Market", "lat": 0, "lon": 0.02}]}
  ],
  "transfers": []
}`
